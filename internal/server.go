package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/biopeak/analytics/internal/activity"
	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/config"
	"github.com/biopeak/analytics/internal/db"
	"github.com/biopeak/analytics/internal/gas"
	"github.com/biopeak/analytics/internal/middleware"
	"github.com/biopeak/analytics/internal/misc"
	"github.com/biopeak/analytics/internal/overtraining"
	"github.com/biopeak/analytics/internal/segments"
	"github.com/biopeak/analytics/internal/statistics"
	"github.com/biopeak/analytics/internal/telemetry/metrics"
	"github.com/biopeak/analytics/internal/telemetry/tracing"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	serviceSecret     string // used by internal callers for batch endpoints
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient    *redis.Client
	authService    *auth.Service
	sessionChecker *auth.SessionChecker

	activitiesRepo *activity.Repo
	samplesCache   *activity.SamplesCache
	batchRunner    *overtraining.BatchRunner

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	ServiceSecret           string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": "biopeak_analytics_db"},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("biopeak", "analytics", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultTTL, rdb, auth.NewRepo(dbPool))
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "analytics-backend")
	if err != nil {
		return nil, err
	}

	activitiesRepo := activity.NewRepo(dbPool)
	samplesCache := activity.NewSamplesCache(activitiesRepo, params.Config.SampleCacheMegabytes)

	batchRunner := overtraining.NewBatchRunner(
		activitiesRepo,
		overtraining.NewRepo(dbPool),
		metricsManager,
		overtraining.BatchParams{
			BatchSize:           params.Config.BatchSize,
			InterBatchDelay:     time.Duration(params.Config.BatchDelaySeconds) * time.Second,
			DaysActiveThreshold: params.Config.DaysActiveThreshold,
		},
	)
	if params.Config.BatchTickerEnabled {
		batchRunner.StartTicker(ctx, time.Duration(params.Config.BatchIntervalHours)*time.Hour)
	}

	return &Server{
		config:        params.Config,
		dbPool:        dbPool,
		serviceSecret: params.ServiceSecret,
		versionInfo:   params.VersionInfo,

		redisClient:    rdb,
		authService:    authService,
		sessionChecker: auth.NewSessionChecker(auth.DefaultTTL, rdb),

		activitiesRepo: activitiesRepo,
		samplesCache:   samplesCache,
		batchRunner:    batchRunner,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	miscHandler := misc.NewHandler(s.versionInfo, s.authService)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	activityHandler := activity.NewHandler(s.activitiesRepo, s.metricsManager)
	r.HandleFunc("/activities", activityHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-activity")
	r.HandleFunc("/activities/user/{userID}", activityHandler.HandleListForUser).Methods("GET", "OPTIONS").Name("list-activities")

	segmentsHandler := segments.NewHandler(
		s.activitiesRepo,
		s.samplesCache,
		segments.NewRepo(s.dbPool),
		s.metricsManager,
	)
	r.HandleFunc("/segments/best1km", segmentsHandler.HandleScan).Methods("POST", "OPTIONS").Name("scan-best-segment")
	r.HandleFunc("/segments/user/{userID}", segmentsHandler.HandleListForUser).Methods("GET", "OPTIONS").Name("list-best-segments")

	overtrainingHandler := overtraining.NewHandler(
		s.activitiesRepo,
		overtraining.NewRepo(s.dbPool),
		s.batchRunner,
		s.metricsManager,
	)
	r.HandleFunc("/overtraining/risk", overtrainingHandler.HandleRisk).Methods("POST", "OPTIONS").Name("overtraining-risk")
	r.HandleFunc("/overtraining/batch", overtrainingHandler.HandleBatch).Methods("POST", "OPTIONS").Name("overtraining-batch")

	gasHandler := gas.NewHandler(
		s.activitiesRepo,
		gas.NewRepo(s.dbPool),
		s.metricsManager,
		gas.HandlerParams{
			BatchSize:           s.config.BatchSize,
			DaysActiveThreshold: s.config.DaysActiveThreshold,
		},
	)
	r.HandleFunc("/gas", gasHandler.HandleEstimate).Methods("POST", "OPTIONS").Name("gas-estimate")
	r.HandleFunc("/gas/backfill", gasHandler.HandleBackfill).Methods("POST", "OPTIONS").Name("gas-backfill")

	statisticsHandler := statistics.NewHandler(
		s.activitiesRepo,
		s.samplesCache,
		statistics.NewRepo(s.dbPool),
		s.metricsManager,
	)
	r.HandleFunc("/statistics", statisticsHandler.HandleCalculate).Methods("POST", "OPTIONS").Name("calculate-statistics")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(
		s.serviceSecret,
		s.sessionChecker,
	)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
