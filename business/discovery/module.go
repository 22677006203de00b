// Package discovery implements the price discovery bounded context: the
// multi-path token pricing engine.
package discovery

import (
	"context"
	"sync"

	"github.com/stxforge/pricegraph/business/discovery/app"
	discoveryDI "github.com/stxforge/pricegraph/business/discovery/di"
	"github.com/stxforge/pricegraph/business/discovery/domain"
	"github.com/stxforge/pricegraph/business/discovery/infra/history"
	mdapp "github.com/stxforge/pricegraph/business/marketdata/app"
	marketdataDI "github.com/stxforge/pricegraph/business/marketdata/di"
	mddomain "github.com/stxforge/pricegraph/business/marketdata/domain"
	"github.com/stxforge/pricegraph/internal/config"
	"github.com/stxforge/pricegraph/internal/database"
	"github.com/stxforge/pricegraph/internal/di"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/monolith"
	"github.com/stxforge/pricegraph/internal/token"
)

// Module implements the discovery bounded context.
type Module struct{}

// RegisterServices registers all discovery services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PoolSource adapter over marketdata - private dependency
	di.RegisterToken(c, discoveryDI.PoolSource, func(sr di.ServiceRegistry) app.PoolSource {
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("tokenRegistry").(*token.Registry)

		return &snapshotAdapter{
			market:   marketdataDI.GetMarketDataService(sr),
			registry: registry,
			log:      log,
		}
	})

	// Register AnchorOracle adapter over marketdata - private dependency
	di.RegisterToken(c, discoveryDI.AnchorOracle, func(sr di.ServiceRegistry) app.AnchorOracle {
		return &oracleAdapter{market: marketdataDI.GetMarketDataService(sr)}
	})

	// Register HistoryStore - private dependency, nil when disabled
	di.RegisterToken(c, discoveryDI.HistoryStore, func(sr di.ServiceRegistry) app.HistoryStore {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if !cfg.History.Enabled {
			return nil
		}

		ctx := context.Background()
		pool, err := database.Connect(ctx, database.DefaultConfig(cfg.History.DSN))
		if err != nil {
			panic("failed to connect history database: " + err.Error())
		}
		store, err := history.NewPostgresStore(ctx, pool, log)
		if err != nil {
			panic("failed to initialize history store: " + err.Error())
		}
		return store
	})

	// Register discovery Service (public - exposed to other modules)
	di.RegisterToken(c, discoveryDI.DiscoveryService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("tokenRegistry").(*token.Registry)

		weight := domain.DefaultWeightParams()
		weight.HopPenalty = cfg.Engine.HopPenalty
		weight.MinWeight = cfg.Engine.MinPathWeight
		weight.LiquidityBoostCap = cfg.Engine.LiquidityBoostCap
		weight.RecencyHalfLife = cfg.Engine.RecencyHalfLife
		weight.MinRecencyFactor = cfg.Engine.MinRecencyFactor

		return app.NewService(
			discoveryDI.GetPoolSource(sr),
			discoveryDI.GetAnchorOracle(sr),
			di.GetToken(sr, discoveryDI.HistoryStore),
			registry,
			log,
			app.ServiceConfig{
				MaxHops:     cfg.Engine.MaxHops,
				Parallelism: cfg.Engine.Parallelism,
				CacheTTL:    cfg.Engine.CacheTTL,
				MaxPoolAge:  cfg.Engine.MaxPoolAge,
				Aggregator: app.AggregatorConfig{
					OutlierMaxDeviation: cfg.Engine.OutlierMaxDeviationDecimal(),
					MinSurvivingPaths:   cfg.Engine.MinSurvivingPaths,
					MaxPoolAge:          cfg.Engine.MaxPoolAge,
					Weight:              weight,
					Confidence:          domain.DefaultConfidenceParams(),
				},
			},
		)
	})

	return nil
}

// Startup initializes the discovery module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	// Force service construction so wiring errors surface at startup.
	discoveryDI.GetDiscoveryService(mono.Services())
	mono.Logger().Info(ctx, "discovery module started")
	return nil
}

// snapshotAdapter resolves marketdata pool records into typed discovery
// pools. Records naming unknown tokens are skipped with a warning; this
// is the boundary where feed data enters the pricing core.
type snapshotAdapter struct {
	market   *mdapp.Service
	registry *token.Registry
	log      logger.LoggerInterface

	mu      sync.Mutex
	cached  *domain.Snapshot
	version uint64
}

func (a *snapshotAdapter) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	raw, err := a.market.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached != nil && a.version == raw.Version {
		return a.cached, nil
	}

	snapshot := a.convert(ctx, raw)
	a.cached = snapshot
	a.version = raw.Version
	return snapshot, nil
}

func (a *snapshotAdapter) convert(ctx context.Context, raw *mddomain.PoolSnapshot) *domain.Snapshot {
	pools := make([]*domain.Pool, 0, len(raw.Pools))
	for _, rec := range raw.Pools {
		tokenX, okX := a.registry.Resolve(rec.TokenX)
		tokenY, okY := a.registry.Resolve(rec.TokenY)
		if !okX || !okY {
			a.log.Warn(ctx, "skipping pool with unknown token",
				"pool", rec.PoolID,
				"tokenX", rec.TokenX,
				"tokenY", rec.TokenY)
			continue
		}

		pools = append(pools, &domain.Pool{
			ID:        rec.PoolID,
			TokenX:    tokenX,
			TokenY:    tokenY,
			ReserveX:  rec.ReserveX,
			ReserveY:  rec.ReserveY,
			FeeRate:   rec.FeeRate,
			UpdatedAt: rec.UpdatedAt,
		})
	}

	return &domain.Snapshot{
		Version: raw.Version,
		TakenAt: raw.TakenAt,
		Pools:   pools,
	}
}

// oracleAdapter maps the marketdata oracle price into the discovery type.
type oracleAdapter struct {
	market *mdapp.Service
}

func (a *oracleAdapter) AnchorPrice(ctx context.Context) (domain.AnchorPrice, error) {
	price, err := a.market.AnchorPrice(ctx)
	if err != nil {
		return domain.AnchorPrice{}, err
	}
	return domain.AnchorPrice{
		Price:      price.Price,
		Source:     price.Source,
		Confidence: price.Confidence,
		Timestamp:  price.Timestamp,
	}, nil
}
