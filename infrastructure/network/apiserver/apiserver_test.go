package apiserver_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/testutils"
	"github.com/witnessdag/witnessd/infrastructure/network/apiserver"
	"golang.org/x/crypto/ed25519"
)

func get(t *testing.T, server *httptest.Server, path string, expectedStatus int, response interface{}) {
	httpResponse, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %s", path, err)
	}
	defer httpResponse.Body.Close()

	body, err := ioutil.ReadAll(httpResponse.Body)
	if err != nil {
		t.Fatalf("GET %s: error reading body: %s", path, err)
	}
	if httpResponse.StatusCode != expectedStatus {
		t.Fatalf("GET %s: expected status %d, got %d: %s", path, expectedStatus, httpResponse.StatusCode, body)
	}
	if response == nil {
		return
	}
	err = json.Unmarshal(body, response)
	if err != nil {
		t.Fatalf("GET %s: error decoding %s: %s", path, body, err)
	}
}

func urlSafe(hash *externalapi.DomainHash) string {
	return base64.URLEncoding.EncodeToString(hash.ByteSlice())
}

func TestAPIServer(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestAPIServer")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		chain := testutils.AddChain(t, tc, config.GenesisHash, 20, func(i int) ed25519.PrivateKey {
			return testutils.WitnessKey(tc, i)
		})
		tip := chain[len(chain)-1]

		server := httptest.NewServer(apiserver.NewServer("", tc).Handler())
		defer server.Close()

		var status struct {
			LastStableMCI uint64                    `json:"lastStableMci"`
			LastMCI       uint64                    `json:"lastMci"`
			IsHalted      bool                      `json:"isHalted"`
			FreeUnits     []*externalapi.DomainHash `json:"freeUnits"`
		}
		get(t, server, "/status", http.StatusOK, &status)
		if status.LastStableMCI != 7 || status.LastMCI != 20 || status.IsHalted {
			t.Fatalf("unexpected status %+v", status)
		}
		if len(status.FreeUnits) != 1 || !status.FreeUnits[0].Equal(tip) {
			t.Fatalf("expected the tip to be the only free unit, got %v", status.FreeUnits)
		}

		var unit struct {
			Joint *externalapi.DomainJoint `json:"joint"`
			Info  struct {
				MainChainIndex *uint64                 `json:"mainChainIndex"`
				IsStable       bool                    `json:"isStable"`
				Sequence       string                  `json:"sequence"`
				Ball           *externalapi.DomainHash `json:"ball"`
			} `json:"info"`
		}
		get(t, server, "/units/"+urlSafe(chain[4]), http.StatusOK, &unit)
		if !unit.Joint.UnitHash.Equal(chain[4]) {
			t.Fatalf("expected joint %s, got %s", chain[4], unit.Joint.UnitHash)
		}
		if unit.Info.MainChainIndex == nil || *unit.Info.MainChainIndex != 5 || !unit.Info.IsStable ||
			unit.Info.Sequence != "good" || unit.Info.Ball == nil {
			t.Fatalf("unexpected unit info %+v", unit.Info)
		}

		var ballUnit *externalapi.DomainHash
		get(t, server, "/balls/"+urlSafe(unit.Info.Ball), http.StatusOK, &ballUnit)
		if !ballUnit.Equal(chain[4]) {
			t.Fatalf("expected ball of %s, got %s", chain[4], ballUnit)
		}

		var mainChainIndex struct {
			MainChainUnit *externalapi.DomainHash   `json:"mainChainUnit"`
			Units         []*externalapi.DomainHash `json:"units"`
		}
		get(t, server, "/mci/5", http.StatusOK, &mainChainIndex)
		if !mainChainIndex.MainChainUnit.Equal(chain[4]) || len(mainChainIndex.Units) != 1 {
			t.Fatalf("unexpected mci 5 %+v", mainChainIndex)
		}

		var rangeUnits []*externalapi.DomainHash
		get(t, server, "/mci/1/20", http.StatusOK, &rangeUnits)
		if !externalapi.HashesEqual(rangeUnits, chain) {
			t.Fatalf("expected the whole chain in mci order")
		}

		var witnesses []string
		get(t, server, "/units/"+urlSafe(tip)+"/witnesses", http.StatusOK, &witnesses)
		if strings.Join(witnesses, ",") != strings.Join(config.GenesisWitnesses, ",") {
			t.Fatalf("unexpected witness list %v", witnesses)
		}

		query := make([]string, len(config.GenesisWitnesses))
		for i, witness := range config.GenesisWitnesses {
			query[i] = "witness=" + witness
		}
		var selection externalapi.ParentSelection
		get(t, server, "/parents?"+strings.Join(query, "&"), http.StatusOK, &selection)
		if len(selection.Parents) != 1 || !selection.Parents[0].Equal(tip) {
			t.Fatalf("expected the tip to be selected as the only parent, got %v", selection.Parents)
		}

		unknownHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0x42})
		get(t, server, "/units/"+urlSafe(unknownHash), http.StatusNotFound, nil)
		get(t, server, "/balls/"+urlSafe(unknownHash), http.StatusNotFound, nil)
		get(t, server, "/units/not-a-hash", http.StatusUnprocessableEntity, nil)
		get(t, server, "/mci/20/1", http.StatusUnprocessableEntity, nil)
		get(t, server, "/parents", http.StatusUnprocessableEntity, nil)
		get(t, server, fmt.Sprintf("/mci/%d", 1000), http.StatusNotFound, nil)

		metricsResponse, err := http.Get(server.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics: %s", err)
		}
		defer metricsResponse.Body.Close()
		metricsBody, err := ioutil.ReadAll(metricsResponse.Body)
		if err != nil {
			t.Fatalf("error reading metrics: %s", err)
		}
		if !strings.Contains(string(metricsBody), `witnessd_http_requests_total{route="/units/{unit}",status="4xx"}`) {
			t.Fatalf("expected HTTP requests to be counted by route")
		}
	})
}
