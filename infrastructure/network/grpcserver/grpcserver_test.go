package grpcserver_test

import (
	"context"
	"net"
	"testing"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/app/protocol/flows/catchup"
	"github.com/witnessdag/witnessd/domain/consensus"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/testutils"
	"github.com/witnessdag/witnessd/infrastructure/network/grpcserver"
	"golang.org/x/crypto/ed25519"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const maxMessageSize = 1 << 24

func serveOverBufconn(t *testing.T, consensus externalapi.Consensus, config *grpcserver.Config) (
	*grpcserver.Client, func()) {

	listener := bufconn.Listen(1 << 20)
	server := grpcserver.NewServer(nil, consensus, config)
	server.Serve(listener)

	connection, err := grpc.DialContext(context.Background(), "bufconn",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return listener.Dial()
		}),
		grpc.WithInsecure())
	if err != nil {
		t.Fatalf("DialContext: %+v", err)
	}
	client := grpcserver.NewClient("bufconn", connection)
	return client, func() {
		client.Close()
		server.Stop()
	}
}

func defaultConfig() *grpcserver.Config {
	return &grpcserver.Config{
		MaxMessageSize:    maxMessageSize,
		RequestsPerSecond: 1000,
		Burst:             1000,
		MaxSessions:       4,
	}
}

func TestSyncOverGRPC(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		factory := consensus.NewFactory()
		peer, peerTeardown, err := factory.NewTestConsensus(config, "TestSyncOverGRPC-peer")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer peerTeardown()
		node, nodeTeardown, err := factory.NewTestConsensus(config, "TestSyncOverGRPC-node")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer nodeTeardown()

		chain := testutils.AddChain(t, peer, config.GenesisHash, 40, func(i int) ed25519.PrivateKey {
			return testutils.WitnessKey(peer, i)
		})

		client, stop := serveOverBufconn(t, peer, defaultConfig())
		defer stop()

		err = catchup.NewSyncer(node, config.GenesisWitnesses).Sync(context.Background(), client)
		if err != nil {
			t.Fatalf("Sync: %+v", err)
		}
		if lastStableMCI := testutils.LastStableMCI(t, node); lastStableMCI != 27 {
			t.Fatalf("expected last stable mci 27, got %d", lastStableMCI)
		}
		if !testutils.UnitInfo(t, node, chain[len(chain)-1]).IsFree {
			t.Fatalf("expected the chain tip to be free")
		}

		proof, err := client.RequestWitnessProof(context.Background(), config.GenesisWitnesses, 0)
		if err != nil {
			t.Fatalf("RequestWitnessProof: %+v", err)
		}
		if proof == nil || proof.LastBallMCI != 20 {
			t.Fatalf("expected a witness proof to mci 20, got %+v", proof)
		}
		proof, err = client.RequestWitnessProof(context.Background(), config.GenesisWitnesses, 27)
		if err != nil {
			t.Fatalf("RequestWitnessProof: %+v", err)
		}
		if proof != nil {
			t.Fatalf("expected no proof for a current requester")
		}
	})
}

func TestStatusCodes(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestStatusCodes")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		client, stop := serveOverBufconn(t, tc, defaultConfig())
		defer stop()

		unknownHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0x42})
		_, err = client.RequestJoint(context.Background(), unknownHash)
		if code := status.Code(errors.Cause(err)); code != codes.NotFound {
			t.Fatalf("unknown joint: expected NotFound, got %s: %+v", code, err)
		}

		_, err = client.RequestCatchupChain(context.Background(), &externalapi.CatchupRequest{
			LastStableMCI: 3,
			LastKnownMCI:  1,
			Witnesses:     config.GenesisWitnesses,
		})
		if code := status.Code(errors.Cause(err)); code != codes.InvalidArgument {
			t.Fatalf("invalid catchup request: expected InvalidArgument, got %s: %+v", code, err)
		}

		_, err = client.RequestHashTree(context.Background(), &externalapi.HashTreeRequest{
			FromBall: unknownHash,
			ToBall:   unknownHash,
		})
		if code := status.Code(errors.Cause(err)); code != codes.NotFound {
			t.Fatalf("unknown ball: expected NotFound, got %s: %+v", code, err)
		}
	})
}

func TestRateLimitAndSessionCap(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestRateLimitAndSessionCap")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		limited, stop := serveOverBufconn(t, tc, &grpcserver.Config{
			MaxMessageSize:    maxMessageSize,
			RequestsPerSecond: 0.001,
			Burst:             1,
			MaxSessions:       4,
		})
		defer stop()

		_, err = limited.RequestFreeUnits(context.Background())
		if err != nil {
			t.Fatalf("RequestFreeUnits: %+v", err)
		}
		_, err = limited.RequestFreeUnits(context.Background())
		if code := status.Code(errors.Cause(err)); code != codes.ResourceExhausted {
			t.Fatalf("expected the second request to be rate limited, got %s: %+v", code, err)
		}

		noSessions, stopNoSessions := serveOverBufconn(t, tc, &grpcserver.Config{
			MaxMessageSize:    maxMessageSize,
			RequestsPerSecond: 1000,
			Burst:             1000,
			MaxSessions:       0,
		})
		defer stopNoSessions()

		_, err = noSessions.RequestCatchupChain(context.Background(), &externalapi.CatchupRequest{
			Witnesses: config.GenesisWitnesses,
		})
		if code := status.Code(errors.Cause(err)); code != codes.ResourceExhausted {
			t.Fatalf("expected the catchup chain to be refused, got %s: %+v", code, err)
		}
		freeUnits, err := noSessions.RequestFreeUnits(context.Background())
		if err != nil {
			t.Fatalf("RequestFreeUnits: %+v", err)
		}
		if len(freeUnits) != 1 || !freeUnits[0].Equal(config.GenesisHash) {
			t.Fatalf("expected genesis to be the only free unit, got %v", freeUnits)
		}
	})
}
