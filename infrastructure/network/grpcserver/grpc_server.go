package grpcserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/infrastructure/metrics"
	"github.com/witnessdag/witnessd/util/panics"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// Config bounds what the catchup service serves
type Config struct {
	MaxMessageSize int

	// RequestsPerSecond and Burst rate limit the requests of every peer
	RequestsPerSecond float64
	Burst             int

	// MaxSessions caps the catchup chains and hash trees built concurrently
	MaxSessions int64
}

// Server is the catchup gRPC server
type Server struct {
	consensus          externalapi.Consensus
	config             *Config
	listeningAddresses []string
	server             *grpc.Server

	sessions       *semaphore.Weighted
	activeSessions int64

	limitersLock sync.Mutex
	limiters     map[string]*rate.Limiter
}

// NewServer creates a catchup gRPC server serving consensus
func NewServer(listeningAddresses []string, consensus externalapi.Consensus, config *Config) *Server {
	log.Debugf("Created new catchup GRPC server with maxMessageSize %d", config.MaxMessageSize)
	s := &Server{
		consensus:          consensus,
		config:             config,
		listeningAddresses: listeningAddresses,
		server: grpc.NewServer(grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize)),
		sessions: semaphore.NewWeighted(config.MaxSessions),
		limiters: make(map[string]*rate.Limiter),
	}
	s.server.RegisterService(&catchupServiceDesc, s)
	return s
}

// Start starts listening on all listening addresses
func (s *Server) Start() error {
	for _, listenAddress := range s.listeningAddresses {
		listener, err := net.Listen("tcp", listenAddress)
		if err != nil {
			return errors.Wrapf(err, "error listening on %s", listenAddress)
		}
		s.Serve(listener)
	}
	return nil
}

// Serve serves catchup requests on listener in the background
func (s *Server) Serve(listener net.Listener) {
	spawn(fmt.Sprintf("grpcserver.Serve-%s", listener.Addr()), func() {
		err := s.server.Serve(listener)
		if err != nil {
			panics.Exit(log, fmt.Sprintf("error serving catchup on %s: %+v", listener.Addr(), err))
		}
	})
	log.Infof("Catchup server listening on %s", listener.Addr())
}

// Stop stops the server, waiting a little for running requests to finish
func (s *Server) Stop() error {
	const stopTimeout = 2 * time.Second

	stopChan := make(chan interface{})
	go func() {
		s.server.GracefulStop()
		close(stopChan)
	}()

	select {
	case <-stopChan:
	case <-time.After(stopTimeout):
		log.Warnf("Could not gracefully stop the catchup server: timed out after %s", stopTimeout)
		s.server.Stop()
	}
	return nil
}

func (s *Server) GetCatchupChain(ctx context.Context, request *externalapi.CatchupRequest) (
	*externalapi.CatchupChain, error) {

	var chain *externalapi.CatchupChain
	err := s.serveSession(ctx, metrics.RequestCatchupChain, func() (err error) {
		chain, err = s.consensus.PrepareCatchupChain(ctx, request)
		return err
	})
	return chain, err
}

func (s *Server) GetWitnessProof(ctx context.Context, request *WitnessProofRequest) (*WitnessProofResponse, error) {
	response := &WitnessProofResponse{}
	err := s.serveSession(ctx, metrics.RequestWitnessProof, func() error {
		proof, err := s.consensus.GetWitnessProof(ctx, request.Witnesses, request.LastStableMCI)
		if errors.Is(err, ruleerrors.ErrAlreadyCurrent) {
			response.IsCurrent = true
			return nil
		}
		response.Proof = proof
		return err
	})
	return response, err
}

func (s *Server) GetHashTree(ctx context.Context, request *externalapi.HashTreeRequest) (
	*externalapi.HashTreeResponse, error) {

	var response *externalapi.HashTreeResponse
	err := s.serveSession(ctx, metrics.RequestHashTree, func() (err error) {
		response, err = s.consensus.GetHashTree(ctx, request)
		return err
	})
	return response, err
}

func (s *Server) GetJoint(ctx context.Context, request *JointRequest) (*externalapi.DomainJoint, error) {
	var joint *externalapi.DomainJoint
	err := s.serve(ctx, metrics.RequestJoint, func() (err error) {
		if request.UnitHash == nil {
			return status.Error(codes.InvalidArgument, "joint request is missing a unit")
		}
		joint, err = s.consensus.GetJoint(request.UnitHash)
		return err
	})
	return joint, err
}

func (s *Server) GetFreeUnits(ctx context.Context, _ *FreeUnitsRequest) (*FreeUnitsResponse, error) {
	response := &FreeUnitsResponse{}
	err := s.serve(ctx, metrics.RequestFreeUnits, func() (err error) {
		response.FreeUnits, err = s.consensus.GetFreeUnits()
		return err
	})
	return response, err
}

// serveSession serves a request that builds a catchup chain or hash tree,
// which is only done for up to MaxSessions requests at a time
func (s *Server) serveSession(ctx context.Context, request string, handler func() error) error {
	return s.serve(ctx, request, func() error {
		if !s.sessions.TryAcquire(1) {
			return status.Errorf(codes.ResourceExhausted, "more than %d catchup sessions are running",
				s.config.MaxSessions)
		}
		defer s.sessions.Release(1)

		metrics.SetActiveCatchupSessions(int(atomic.AddInt64(&s.activeSessions, 1)))
		defer func() {
			metrics.SetActiveCatchupSessions(int(atomic.AddInt64(&s.activeSessions, -1)))
		}()
		return handler()
	})
}

func (s *Server) serve(ctx context.Context, request string, handler func() error) error {
	start := time.Now()
	peerAddress := peerAddressFromContext(ctx)

	var statusErr error
	if s.limiter(peerAddress).Allow() {
		statusErr = toStatusError(handler())
	} else {
		statusErr = status.Errorf(codes.ResourceExhausted, "request rate of %s exceeds %.2f per second",
			peerAddress, s.config.RequestsPerSecond)
	}

	outcome := "ok"
	if statusErr != nil {
		outcome = status.Code(statusErr).String()
		log.Debugf("Error serving %s to %s: %s", request, peerAddress, statusErr)
	}
	metrics.RecordCatchupRequest(request, outcome, time.Since(start).Seconds())
	return statusErr
}

func (s *Server) limiter(peerAddress string) *rate.Limiter {
	s.limitersLock.Lock()
	defer s.limitersLock.Unlock()

	limiter, ok := s.limiters[peerAddress]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.config.RequestsPerSecond), s.config.Burst)
		s.limiters[peerAddress] = limiter
	}
	return limiter
}

func peerAddressFromContext(ctx context.Context) string {
	peerInfo, ok := peer.FromContext(ctx)
	if !ok {
		return "unknown"
	}
	if tcpAddress, ok := peerInfo.Addr.(*net.TCPAddr); ok {
		return tcpAddress.IP.String()
	}
	return peerInfo.Addr.String()
}

// toStatusError maps consensus errors to gRPC status codes
func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	if database.IsNotFoundError(err) || errors.Is(err, ruleerrors.ErrUnknownBall) {
		return status.Error(codes.NotFound, err.Error())
	}

	category, ok := ruleerrors.CategoryOf(err)
	if !ok {
		log.Errorf("Internal error serving a catchup request: %+v", err)
		return status.Error(codes.Internal, "internal error")
	}
	switch category {
	case ruleerrors.CategoryStructural:
		return status.Error(codes.InvalidArgument, err.Error())
	case ruleerrors.CategoryResourceBoundExceeded:
		return status.Error(codes.ResourceExhausted, err.Error())
	case ruleerrors.CategoryIncompleteProof:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
