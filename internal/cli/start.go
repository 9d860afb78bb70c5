package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alumni-quiz-proctor/internal/app"
	"alumni-quiz-proctor/internal/auth"
	"alumni-quiz-proctor/internal/backend"
	"alumni-quiz-proctor/internal/config"
	"alumni-quiz-proctor/internal/domain"
	"alumni-quiz-proctor/internal/infra/memory"
	"alumni-quiz-proctor/internal/infra/postgres"
	redisinfra "alumni-quiz-proctor/internal/infra/redis"
	"alumni-quiz-proctor/internal/logger"
	transport "alumni-quiz-proctor/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz proctoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("auth.jwtSecret not set, learner tokens are decoded without signature checks")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	deps := app.Dependencies{}
	if cfg.Backend.BaseURL != "" {
		client := backend.NewClient(cfg.Backend.BaseURL, config.TTLDuration(cfg.Backend.Timeout, 10*time.Second))
		deps.Jobs, deps.Bank, deps.Results = client, client, client
	} else {
		log.Warn().Msg("backend.baseURL not set, serving the built-in demo catalog")
		catalog := demoCatalog()
		deps.Jobs, deps.Bank, deps.Results = catalog, catalog, catalog
	}

	jobTTL := config.TTLDuration(cfg.Quiz.JobCacheTTL, 5*time.Minute)
	if redisClient != nil {
		deps.Jobs = redisinfra.NewJobCache(redisClient, deps.Jobs, jobTTL)
		deps.Tokens = redisinfra.NewTokenStore(redisClient, redisTTL)
		deps.Registry = redisinfra.NewSessionStore(redisClient, redisTTL)
		deps.Locks = redisinfra.NewAttemptLocks(redisClient, redisTTL)
	} else {
		deps.Jobs = memory.NewJobCache(deps.Jobs, jobTTL)
		deps.Tokens = memory.NewTokenStore()
		deps.Registry = memory.NewSessionStore()
		deps.Locks = memory.NewAttemptLocks()
	}

	if pool != nil {
		deps.Ledger = postgres.NewAttemptLedger(pool)
	} else {
		deps.Ledger = memory.NewAttemptLedger()
	}

	service := app.NewProctorService(deps, app.Options{
		TickInterval:  config.TTLDuration(cfg.Quiz.TickInterval, time.Second),
		SubmitTimeout: config.TTLDuration(cfg.Quiz.SubmitTimeout, 15*time.Second),
	}, log)
	wsHandler := transport.NewWSHandler(service, auth.NewResolver(cfg.Auth.JWTSecret), log, cfg.Server.AllowedOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("Starting quiz proctor")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("Shutting down server")
	case <-ctx.Done():
		log.Info().Msg("Context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	service.Shutdown()
	return err
}

// demoCatalog lets the server run without the platform backend.
func demoCatalog() *memory.Catalog {
	options := func(opts ...string) []string { return opts }
	return memory.NewCatalog(
		map[string]domain.Job{
			"demo-job": {
				ID:          "demo-job",
				Title:       "Junior Backend Engineer",
				Skills:      []string{"Go", "SQL"},
				QuizEnabled: true,
				QuizQuestions: []domain.Question{
					{
						ID:                 "demo-q1",
						Text:               "Which keyword starts a goroutine?",
						Options:            options("go", "async", "spawn", "thread"),
						CorrectOptionIndex: 0,
						Difficulty:         "Easy",
					},
					{
						ID:                 "demo-q2",
						Text:               "Which SQL clause filters grouped rows?",
						Options:            options("WHERE", "HAVING", "ORDER BY", "LIMIT"),
						CorrectOptionIndex: 1,
						Difficulty:         "Medium",
					},
				},
			},
			"demo-skills": {
				ID:     "demo-skills",
				Title:  "Data Analyst",
				Skills: []string{"SQL"},
			},
		},
		map[string][]domain.Question{
			"sql": {
				{
					Text:               "Which join keeps unmatched rows from the left table?",
					Options:            options("INNER JOIN", "LEFT JOIN", "CROSS JOIN", "SELF JOIN"),
					CorrectOptionIndex: 1,
					Category:           "sql",
				},
			},
		},
	)
}
