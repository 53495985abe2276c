package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/clubroyale/auction-league/internal/config"
	"github.com/clubroyale/auction-league/internal/domain/audit"
	"github.com/clubroyale/auction-league/internal/domain/auction"
	"github.com/clubroyale/auction-league/internal/domain/closing"
	"github.com/clubroyale/auction-league/internal/domain/club"
	"github.com/clubroyale/auction-league/internal/domain/points"
	"github.com/clubroyale/auction-league/internal/domain/result"
	"github.com/clubroyale/auction-league/internal/domain/roster"
	"github.com/clubroyale/auction-league/internal/infrastructure/account/sessiond"
	"github.com/clubroyale/auction-league/internal/infrastructure/repository/memory"
	"github.com/clubroyale/auction-league/internal/infrastructure/repository/postgres"
	"github.com/clubroyale/auction-league/internal/interfaces/httpapi"
	idgen "github.com/clubroyale/auction-league/internal/platform/id"
	"github.com/clubroyale/auction-league/internal/platform/logging"
	"github.com/clubroyale/auction-league/internal/platform/unitofwork"
	"github.com/clubroyale/auction-league/internal/usecase"
)

// App owns the composed process: HTTP server, background workers and the
// optional database handle.
type App struct {
	Server *http.Server

	db               *sqlx.DB
	settlementWorker *usecase.SettlementWorker
	finalizeSweeper  *usecase.FinalizeSweeper
	logger           *logging.Logger
}

type repoSet struct {
	lots        auction.Repository
	bids        auction.BidLog
	actions     closing.Repository
	results     result.Repository
	settlements result.SettlementRepository
	pointsRepo  points.Repository
	clubs       club.Repository
	rosters     roster.Repository
	auditLog    audit.Repository
	runner      unitofwork.Runner
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var db *sqlx.DB
	var repos repoSet
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Warn("DB_URL is empty, using in-memory repositories with demo seed data")
		repos = newMemoryRepoSet()
	} else {
		var err error
		db, err = connectDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		repos = newPostgresRepoSet(ctx, db, logger)
	}

	closingSvc := usecase.NewLotClosingService(
		repos.lots,
		repos.actions,
		repos.bids,
		repos.rosters,
		repos.auditLog,
		repos.runner,
		idgen.NewRandomGenerator(),
		usecase.NewNoopBroadcaster(),
		logger,
	)
	settlementSvc := usecase.NewSettlementService(
		repos.results,
		repos.settlements,
		repos.clubs,
		repos.rosters,
		repos.pointsRepo,
		repos.runner,
		cfg.SeasonStart,
		logger,
	)
	standingsSvc := usecase.NewStandingsService(repos.pointsRepo, repos.rosters, repos.results)

	verifier := sessiond.NewClient(
		&http.Client{Timeout: cfg.SessiondTimeout},
		cfg.SessiondBaseURL,
		cfg.SessiondIntrospectPath,
		cfg.SessiondAdminKey,
		sessiond.CircuitBreakerConfig{
			Enabled:          cfg.SessiondCircuitEnabled,
			FailureThreshold: cfg.SessiondCircuitFailureCount,
			OpenTimeout:      cfg.SessiondCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SessiondCircuitHalfOpenReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(closingSvc, settlementSvc, standingsSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:           server,
		db:               db,
		settlementWorker: usecase.NewSettlementWorker(settlementSvc, cfg.SettleInterval, cfg.SettleBatchSize, logger),
		finalizeSweeper:  usecase.NewFinalizeSweeper(closingSvc, cfg.SweepInterval, logger),
		logger:           logger,
	}, nil
}

// StartWorkers launches the settlement loop and the close-finalize sweeper.
// The sweeper's first pass doubles as crash recovery for pre-closed lots
// whose finalize timers died with the previous process.
func (a *App) StartWorkers(ctx context.Context) {
	a.finalizeSweeper.Start(ctx)
	a.settlementWorker.Start(ctx)
}

func (a *App) StopWorkers() {
	a.settlementWorker.Stop()
	a.finalizeSweeper.Stop()
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func newMemoryRepoSet() repoSet {
	return repoSet{
		lots:        memory.NewLotRepository(memory.SeedLots()),
		bids:        memory.NewBidLogRepository(),
		actions:     memory.NewCloseActionRepository(),
		results:     memory.NewResultRepository(),
		settlements: memory.NewSettlementRepository(),
		pointsRepo:  memory.NewPointsRepository(),
		clubs:       memory.NewClubRepository(memory.SeedClubs()),
		rosters:     memory.NewRosterRepository(memory.SeedManagers()),
		auditLog:    memory.NewAuditRepository(),
		runner:      unitofwork.NewSequential(),
	}
}

func newPostgresRepoSet(ctx context.Context, db *sqlx.DB, logger *logging.Logger) repoSet {
	return repoSet{
		lots:        postgres.NewLotRepository(db),
		bids:        postgres.NewBidLogRepository(db),
		actions:     postgres.NewCloseActionRepository(db),
		results:     postgres.NewResultRepository(db),
		settlements: postgres.NewSettlementRepository(db),
		pointsRepo:  postgres.NewPointsRepository(db),
		clubs:       postgres.NewClubRepository(db),
		rosters:     postgres.NewRosterRepository(db),
		auditLog:    postgres.NewAuditRepository(db),
		runner:      postgres.NewTxRunner(ctx, db, logger),
	}
}

func connectDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.ConnectContext(ctx, "postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)

	return db, nil
}
