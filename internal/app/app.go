package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/external/brettzone"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/external/expopush"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/external/truefinals"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/config"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/infrastructure/repository/postgres"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/interfaces/httpapi"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/resilience"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

// App is the process-wide object graph: config, logger, DB, repositories and
// services. Both binaries build one on start and tear it down on interrupt;
// nothing here lives in package-level state.
type App struct {
	Cfg    config.Config
	Logger *logging.Logger
	DB     *sqlx.DB

	Fights      *postgres.FightRepository
	Robots      *postgres.RobotRepository
	Schedules   *postgres.ScheduleRepository
	Subscribers *postgres.SubscriberRepository

	Notifications *usecase.NotificationService
	Sync          *usecase.FightSyncService
	FightAdmin    *usecase.FightAdminService
	RobotAdmin    *usecase.RobotService
	ScheduleSvc   *usecase.ScheduleService
	SubscriberSvc *usecase.SubscriberService
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.ConnectContext(ctx, "postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	fights := postgres.NewFightRepository(db)
	robots := postgres.NewRobotRepository(db)
	schedules := postgres.NewScheduleRepository(db, dsn, logger)
	subscribers := postgres.NewSubscriberRepository(db)

	var sender usecase.PushSender
	if cfg.ExpoPushEnabled {
		sender = expopush.NewClient(expopush.ClientConfig{
			Endpoint: cfg.ExpoPushEndpoint,
			Timeout:  cfg.ExpoPushTimeout,
			Logger:   logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled: cfg.ExpoPushCircuitEnabled,
			},
		})
	} else {
		sender = nopPushSender{logger: logger}
	}

	notifications, err := usecase.NewNotificationService(subscribers, sender, cfg.ExpoPushWorkers, logger)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			logger.Warn("close database after failed startup", "error", closeErr)
		}
		return nil, err
	}

	normalizer := usecase.NewNormalizer(cfg.Timezone, logger)
	reconciler := usecase.NewReconcileService(fights, robots, notifications, logger)
	sync := usecase.NewFightSyncService(buildAdapters(cfg, logger), robots, normalizer, reconciler, logger)

	return &App{
		Cfg:           cfg,
		Logger:        logger,
		DB:            db,
		Fights:        fights,
		Robots:        robots,
		Schedules:     schedules,
		Subscribers:   subscribers,
		Notifications: notifications,
		Sync:          sync,
		FightAdmin:    usecase.NewFightAdminService(fights, robots),
		RobotAdmin:    usecase.NewRobotService(robots),
		ScheduleSvc:   usecase.NewScheduleService(schedules),
		SubscriberSvc: usecase.NewSubscriberService(subscribers),
	}, nil
}

func buildAdapters(cfg config.Config, logger *logging.Logger) []usecase.SourceAdapter {
	var adapters []usecase.SourceAdapter

	if cfg.BrettZoneEnabled {
		adapters = append(adapters, brettzone.NewClient(brettzone.ClientConfig{
			BaseURL:      cfg.BrettZoneBaseURL,
			TournamentID: cfg.BrettZoneTournamentID,
			Timeout:      cfg.BrettZoneTimeout,
			MaxRetries:   cfg.BrettZoneMaxRetries,
			Logger:       logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.BrettZoneCircuitEnabled,
				FailureThreshold: cfg.BrettZoneCircuitFailureCount,
				OpenTimeout:      cfg.BrettZoneCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.BrettZoneCircuitHalfOpenMaxReq,
			},
		}))
	}

	if cfg.TrueFinalsEnabled {
		adapters = append(adapters, truefinals.NewClient(truefinals.ClientConfig{
			BaseURL:      cfg.TrueFinalsBaseURL,
			TournamentID: cfg.TrueFinalsTournamentID,
			Timeout:      cfg.TrueFinalsTimeout,
			MaxRetries:   cfg.TrueFinalsMaxRetries,
			Logger:       logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.TrueFinalsCircuitEnabled,
				FailureThreshold: cfg.TrueFinalsCircuitFailureCount,
				OpenTimeout:      cfg.TrueFinalsCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.TrueFinalsCircuitHalfOpenMaxReq,
			},
		}))
	}

	return adapters
}

// Close tears the graph down in reverse dependency order.
func (a *App) Close() {
	if a.Notifications != nil {
		a.Notifications.Close()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn("close database", "error", err)
		}
	}
}

// NewHTTPServer builds the admin API server over the app's services.
func (a *App) NewHTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(a.FightAdmin, a.RobotAdmin, a.ScheduleSvc, a.SubscriberSvc, a.Sync, a.Logger)
	router := httpapi.NewRouter(handler, a.Cfg.AdminAPIToken, a.Logger)

	server := &http.Server{
		Addr:         a.Cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.Cfg.ReadTimeout,
		WriteTimeout: a.Cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// nopPushSender stands in when the push gateway is disabled so broadcast
// bookkeeping still runs end to end.
type nopPushSender struct {
	logger *logging.Logger
}

func (s nopPushSender) Send(ctx context.Context, token, title, body string) error {
	s.logger.DebugContext(ctx, "push disabled, dropping message", "token", token, "title", title)
	return nil
}
