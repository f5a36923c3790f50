package integration_testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/biopeak/analytics/internal"
	"github.com/biopeak/analytics/internal/config"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort = 9000
	serverHost = "localhost"

	testServiceSecret = "test-service-secret"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

type Suite struct {
	DB         *sql.DB
	dockerPool *dockertest.Pool
	server     *internal.Server
	teardown   []func()
}

func newSuite(ctx context.Context) (_ *Suite) {
	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}

	pgPort, err := suite.postgresSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}

	cfg := getTestConfig(redisPort, pgPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			ServiceSecret:           testServiceSecret,
			VersionInfo:             "test-version-info",
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		suite.cleanup()
		log.Fatalf("new server: %s", err)
	}

	suite.server.Serve(cfg.Host, cfg.Port)

	return suite
}

func (s *Suite) cleanup() {
	if s.DB != nil {
		s.DB.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Host:                        serverHost,
		Port:                        serverPort,
		RedisHost:                   "localhost",
		RedisPort:                   redisPort,
		PostgresPort:                postgresPort,
		PostgresHost:                "localhost",
		PostgresDBName:              "biopeak_analytics",
		LoginRateLimitAllowedPerMin: 100,
		BatchSize:                   5,
		BatchDelaySeconds:           1,
		DaysActiveThreshold:         30,
		SampleCacheMegabytes:        10,
	}
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")
	return redisPort, nil
}

func (s *Suite) postgresSetup() (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_HOST_AUTH_METHOD=trust",
			"POSTGRES_DB=biopeak_analytics",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		pgResource.Close()
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres@localhost:%s/biopeak_analytics?sslmode=disable", pgPort)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return "", fmt.Errorf("open db conn: %s", err)
	}
	s.DB = db

	if _, err := db.Exec(initSQL); err != nil {
		return "", fmt.Errorf("run init script: %s", err)
	}

	if db.Ping() != nil {
		return "", fmt.Errorf("ping db: %s", err)
	}

	return pgPort, nil
}

const initSQL = `
CREATE TABLE public.app_user
(
    id            VARCHAR PRIMARY KEY,
    username      VARCHAR NOT NULL UNIQUE,
    password_hash VARCHAR NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);

ALTER TABLE public.app_user OWNER TO postgres;

CREATE TABLE public.activity
(
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id          VARCHAR NOT NULL,
    type             VARCHAR NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL,
    duration_seconds INTEGER NOT NULL,
    distance_meters  DOUBLE PRECISION NOT NULL DEFAULT 0,
    calories         DOUBLE PRECISION NOT NULL DEFAULT 0,
    avg_heart_rate   DOUBLE PRECISION NOT NULL DEFAULT 0,
    max_heart_rate   DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL
);

ALTER TABLE public.activity OWNER TO postgres;
CREATE INDEX ix_activity_user_id ON public.activity (user_id);
CREATE INDEX ix_activity_started_at ON public.activity USING btree (started_at);

CREATE TABLE public.activity_sample
(
    activity_id UUID PRIMARY KEY REFERENCES public.activity (id),
    distances   DOUBLE PRECISION[] NOT NULL,
    times       DOUBLE PRECISION[] NOT NULL,
    heart_rates DOUBLE PRECISION[]
);

ALTER TABLE public.activity_sample OWNER TO postgres;

CREATE TABLE public.best_segment
(
    user_id               VARCHAR NOT NULL,
    activity_id           UUID    NOT NULL,
    pace_min_km           DOUBLE PRECISION NOT NULL,
    start_distance_meters DOUBLE PRECISION NOT NULL,
    end_distance_meters   DOUBLE PRECISION NOT NULL,
    duration_seconds      DOUBLE PRECISION NOT NULL,
    activity_date         TIMESTAMPTZ NOT NULL,
    created_at            TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, activity_id)
);

ALTER TABLE public.best_segment OWNER TO postgres;
CREATE INDEX ix_best_segment_activity_date ON public.best_segment (activity_date);

CREATE TABLE public.overtraining_score
(
    id             SERIAL PRIMARY KEY,
    user_id        VARCHAR NOT NULL,
    score          INTEGER NOT NULL,
    level          VARCHAR NOT NULL,
    factors        VARCHAR[] NOT NULL DEFAULT '{}',
    recommendation VARCHAR NOT NULL,
    calculated_at  TIMESTAMPTZ NOT NULL
);

ALTER TABLE public.overtraining_score OWNER TO postgres;
CREATE INDEX ix_overtraining_score_user_id ON public.overtraining_score (user_id);

CREATE TABLE public.overtraining_batch_log
(
    id              SERIAL PRIMARY KEY,
    status          VARCHAR NOT NULL,
    started_at      TIMESTAMPTZ NOT NULL,
    finished_at     TIMESTAMPTZ NOT NULL,
    users_processed INTEGER NOT NULL,
    users_failed    INTEGER NOT NULL,
    user_errors     JSONB,
    duration_ms     BIGINT NOT NULL
);

ALTER TABLE public.overtraining_batch_log OWNER TO postgres;

CREATE TABLE public.gas_snapshot
(
    user_id       VARCHAR NOT NULL,
    calendar_date VARCHAR NOT NULL,
    fitness       DOUBLE PRECISION NOT NULL,
    fatigue       DOUBLE PRECISION NOT NULL,
    performance   DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (user_id, calendar_date)
);

ALTER TABLE public.gas_snapshot OWNER TO postgres;

CREATE TABLE public.statistics_metrics
(
    user_id               VARCHAR NOT NULL,
    activity_id           UUID    NOT NULL,
    total_distance_km     DOUBLE PRECISION NOT NULL,
    total_time_minutes    DOUBLE PRECISION NOT NULL,
    average_pace_min_km   DOUBLE PRECISION NOT NULL,
    average_heart_rate    DOUBLE PRECISION NOT NULL,
    max_heart_rate        DOUBLE PRECISION NOT NULL,
    heart_rate_std_dev    DOUBLE PRECISION NOT NULL,
    heart_rate_cv_percent DOUBLE PRECISION NOT NULL,
    pace_std_dev          DOUBLE PRECISION NOT NULL,
    pace_cv_percent       DOUBLE PRECISION NOT NULL,
    calculated_at         TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, activity_id)
);

ALTER TABLE public.statistics_metrics OWNER TO postgres;
`
