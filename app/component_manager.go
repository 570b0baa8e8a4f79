package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/app/protocol/flows/catchup"
	"github.com/witnessdag/witnessd/app/protocol/protocolerrors"
	"github.com/witnessdag/witnessd/domain/consensus"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/infrastructure/config"
	infrastructuredatabase "github.com/witnessdag/witnessd/infrastructure/db/database"
	"github.com/witnessdag/witnessd/infrastructure/network/apiserver"
	"github.com/witnessdag/witnessd/infrastructure/network/grpcserver"
	"golang.org/x/sync/errgroup"
)

const syncInterval = 30 * time.Second

// ComponentManager is a wrapper for all the witnessd services
type ComponentManager struct {
	cfg        *config.Config
	consensus  externalapi.Consensus
	grpcServer *grpcserver.Server
	apiServer  *apiserver.Server
	syncer     *catchup.Syncer

	cancel    context.CancelFunc
	syncGroup *errgroup.Group

	started, shutdown int32
}

// NewComponentManager returns a new ComponentManager instance.
// Use Start() to begin all services within this ComponentManager
func NewComponentManager(cfg *config.Config, db infrastructuredatabase.Database) (*ComponentManager, error) {
	consensusConfig := consensus.NewConfig(cfg.NetParams())
	consensusConfig.MaxHashTreeSpan = cfg.MaxHashTreeSpan
	consensusConfig.MaxHashTreeBalls = cfg.MaxHashTreeBalls
	consensusConfig.CacheSize = cfg.CacheSize

	c, err := consensus.NewFactory().NewConsensus(consensusConfig, db)
	if err != nil {
		return nil, err
	}

	manager := &ComponentManager{
		cfg:       cfg,
		consensus: c,
		syncer:    catchup.NewSyncer(c, cfg.Witnesses),
	}
	if !cfg.DisableGRPC {
		manager.grpcServer = grpcserver.NewServer(cfg.GRPCListeners, c, &grpcserver.Config{
			MaxMessageSize:    cfg.MaxMessageSize,
			RequestsPerSecond: cfg.CatchupRateLimit,
			Burst:             cfg.CatchupBurst,
			MaxSessions:       cfg.MaxCatchupSessions,
		})
	}
	if !cfg.DisableAPI {
		manager.apiServer = apiserver.NewServer(cfg.APIListener, c)
	}
	return manager, nil
}

// Start launches all the witnessd services.
func (a *ComponentManager) Start() error {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return nil
	}

	log.Trace("Starting witnessd")

	if a.grpcServer != nil {
		err := a.grpcServer.Start()
		if err != nil {
			return errors.Wrap(err, "error starting the catchup server")
		}
	}
	if a.apiServer != nil {
		err := a.apiServer.Start()
		if err != nil {
			return errors.Wrap(err, "error starting the HTTP API server")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.syncGroup, ctx = errgroup.WithContext(ctx)
	if a.cfg.ConnectPeer != "" {
		a.syncGroup.Go(func() error {
			return a.syncFromPeer(ctx, a.cfg.ConnectPeer)
		})
	}
	return nil
}

// Stop gracefully shuts down all the witnessd services.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("Witnessd is already in the process of shutting down")
		return
	}

	log.Warnf("Witnessd shutting down")

	if a.cancel != nil {
		a.cancel()
		err := a.syncGroup.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("Error syncing: %+v", err)
		}
	}
	if a.apiServer != nil {
		err := a.apiServer.Stop()
		if err != nil {
			log.Errorf("Error stopping the HTTP API server: %+v", err)
		}
	}
	if a.grpcServer != nil {
		err := a.grpcServer.Stop()
		if err != nil {
			log.Errorf("Error stopping the catchup server: %+v", err)
		}
	}
}

// syncFromPeer catches up from the peer at address every syncInterval until
// ctx is done. A peer that sends invalid data is not synced from again.
func (a *ComponentManager) syncFromPeer(ctx context.Context, address string) error {
	client, err := grpcserver.Connect(address, a.cfg.MaxMessageSize)
	if err != nil {
		return err
	}
	defer client.Close()

	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()
	for {
		err := a.syncer.Sync(ctx, client)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			if protocolerrors.ShouldBan(err) {
				log.Warnf("Not syncing from %s anymore: %s", address, err)
				return nil
			}
			log.Warnf("Error syncing from %s: %s", address, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
