package apiserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

const maxUnitsPerMCIRange = 1000

func makeHandler(handler func(vars map[string]string, query map[string][]string) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response, err := handler(mux.Vars(r), r.URL.Query())
		if err != nil {
			sendErr(w, toHandlerError(err))
			return
		}
		sendJSONResponse(w, response)
	}
}

func (s *Server) addRoutes(router *mux.Router) {
	router.HandleFunc("/", makeHandler(s.mainHandler)).Methods("GET")
	router.HandleFunc("/status", makeHandler(s.statusHandler)).Methods("GET")
	router.HandleFunc("/units/free", makeHandler(s.freeUnitsHandler)).Methods("GET")
	router.HandleFunc("/units/{unit}", makeHandler(s.unitHandler)).Methods("GET")
	router.HandleFunc("/units/{unit}/witnesses", makeHandler(s.witnessListHandler)).Methods("GET")
	router.HandleFunc("/balls/{ball}", makeHandler(s.ballHandler)).Methods("GET")
	router.HandleFunc("/mci/{mci:[0-9]+}", makeHandler(s.mainChainIndexHandler)).Methods("GET")
	router.HandleFunc("/mci/{from:[0-9]+}/{to:[0-9]+}", makeHandler(s.mainChainRangeHandler)).Methods("GET")
	router.HandleFunc("/parents", makeHandler(s.parentsHandler)).Methods("GET")
}

// parseHash accepts both the standard and the URL-safe base64 encodings of
// a hash, since the standard one may contain slashes
func parseHash(vars map[string]string, name string) (*externalapi.DomainHash, error) {
	hashString := strings.NewReplacer("-", "+", "_", "/").Replace(vars[name])
	hash, err := externalapi.NewDomainHashFromString(hashString)
	if err != nil {
		return nil, newHandlerError(http.StatusUnprocessableEntity,
			errors.Wrapf(err, "could not parse %s", name).Error())
	}
	return hash, nil
}

func parseMCI(vars map[string]string, name string) (uint64, error) {
	mci, err := strconv.ParseUint(vars[name], 10, 64)
	if err != nil {
		return 0, newHandlerError(http.StatusUnprocessableEntity,
			errors.Wrapf(err, "could not parse %s", name).Error())
	}
	return mci, nil
}

func (s *Server) mainHandler(map[string]string, map[string][]string) (interface{}, error) {
	return "API server is running", nil
}

type statusResponse struct {
	LastStableMCI uint64                    `json:"lastStableMci"`
	LastMCI       uint64                    `json:"lastMci"`
	IsHalted      bool                      `json:"isHalted"`
	FreeUnits     []*externalapi.DomainHash `json:"freeUnits"`
}

func (s *Server) statusHandler(map[string]string, map[string][]string) (interface{}, error) {
	lastStableMCI, err := s.consensus.LastStableMCI()
	if err != nil {
		return nil, err
	}
	lastMCI, err := s.consensus.LastMCI()
	if err != nil {
		return nil, err
	}
	freeUnits, err := s.consensus.GetFreeUnits()
	if err != nil {
		return nil, err
	}
	return &statusResponse{
		LastStableMCI: lastStableMCI,
		LastMCI:       lastMCI,
		IsHalted:      s.consensus.IsHalted(),
		FreeUnits:     freeUnits,
	}, nil
}

func (s *Server) freeUnitsHandler(map[string]string, map[string][]string) (interface{}, error) {
	return s.consensus.GetFreeUnits()
}

type unitInfoResponse struct {
	Level          uint64                  `json:"level"`
	WitnessedLevel uint64                  `json:"witnessedLevel"`
	BestParent     *externalapi.DomainHash `json:"bestParent,omitempty"`
	MainChainIndex *uint64                 `json:"mainChainIndex,omitempty"`
	IsOnMainChain  bool                    `json:"isOnMainChain"`
	IsStable       bool                    `json:"isStable"`
	IsFree         bool                    `json:"isFree"`
	Sequence       string                  `json:"sequence"`
	Ball           *externalapi.DomainHash `json:"ball,omitempty"`
}

type unitResponse struct {
	Joint *externalapi.DomainJoint `json:"joint"`
	Info  *unitInfoResponse        `json:"info"`
}

func (s *Server) unitHandler(vars map[string]string, _ map[string][]string) (interface{}, error) {
	unitHash, err := parseHash(vars, "unit")
	if err != nil {
		return nil, err
	}
	unitInfo, err := s.consensus.GetUnitInfo(unitHash)
	if err != nil {
		return nil, err
	}
	if !unitInfo.Exists {
		return nil, newHandlerError(http.StatusNotFound, "unit not found")
	}
	joint, err := s.consensus.GetJoint(unitHash)
	if err != nil {
		return nil, err
	}

	info := &unitInfoResponse{
		Level:          unitInfo.Level,
		WitnessedLevel: unitInfo.WitnessedLevel,
		BestParent:     unitInfo.BestParent,
		IsOnMainChain:  unitInfo.IsOnMainChain,
		IsStable:       unitInfo.IsStable,
		IsFree:         unitInfo.IsFree,
		Sequence:       unitInfo.Sequence.String(),
		Ball:           unitInfo.Ball,
	}
	if unitInfo.HasMCI {
		mci := unitInfo.MainChainIndex
		info.MainChainIndex = &mci
	}
	return &unitResponse{Joint: joint, Info: info}, nil
}

func (s *Server) witnessListHandler(vars map[string]string, _ map[string][]string) (interface{}, error) {
	unitHash, err := parseHash(vars, "unit")
	if err != nil {
		return nil, err
	}
	return s.consensus.GetWitnessList(unitHash)
}

func (s *Server) ballHandler(vars map[string]string, _ map[string][]string) (interface{}, error) {
	ball, err := parseHash(vars, "ball")
	if err != nil {
		return nil, err
	}
	return s.consensus.GetUnitByBall(ball)
}

type mainChainIndexResponse struct {
	MainChainUnit *externalapi.DomainHash   `json:"mainChainUnit"`
	Units         []*externalapi.DomainHash `json:"units"`
}

func (s *Server) mainChainIndexHandler(vars map[string]string, _ map[string][]string) (interface{}, error) {
	mci, err := parseMCI(vars, "mci")
	if err != nil {
		return nil, err
	}
	mainChainUnit, err := s.consensus.GetMainChainUnit(mci)
	if err != nil {
		return nil, err
	}
	units, err := s.consensus.GetUnitsByMCIRange(mci, mci, maxUnitsPerMCIRange)
	if err != nil {
		return nil, err
	}
	return &mainChainIndexResponse{MainChainUnit: mainChainUnit, Units: units}, nil
}

func (s *Server) mainChainRangeHandler(vars map[string]string, _ map[string][]string) (interface{}, error) {
	fromMCI, err := parseMCI(vars, "from")
	if err != nil {
		return nil, err
	}
	toMCI, err := parseMCI(vars, "to")
	if err != nil {
		return nil, err
	}
	if fromMCI > toMCI {
		return nil, newHandlerError(http.StatusUnprocessableEntity, "from is above to")
	}
	return s.consensus.GetUnitsByMCIRange(fromMCI, toMCI, maxUnitsPerMCIRange)
}

// parentsHandler selects parents for a new unit posted with the witness
// list given by the repeated witness query parameter
func (s *Server) parentsHandler(_ map[string]string, query map[string][]string) (interface{}, error) {
	witnesses := query["witness"]
	if len(witnesses) == 0 {
		return nil, newHandlerError(http.StatusUnprocessableEntity, "missing witness query parameters")
	}
	return s.consensus.SelectParentsForNewUnit(witnesses)
}
