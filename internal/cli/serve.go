package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"smartlearn-monitor/internal/app"
	"smartlearn-monitor/internal/config"
	"smartlearn-monitor/internal/domain"
	"smartlearn-monitor/internal/infra/memory"
	pgloader "smartlearn-monitor/internal/infra/postgres"
	redisinfra "smartlearn-monitor/internal/infra/redis"
	transport "smartlearn-monitor/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the monitoring/quiz server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the monitoring and quiz session server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "5000"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var bank app.QuizBank
	if redisClient != nil {
		bank = redisinfra.NewQuizBank(redisClient, loader, quizTTL)
	} else {
		bank = memory.NewQuizBank(loader, quizTTL)
	}

	sessionTTL := config.Duration(cfg.Quiz.SessionTTL, 30*time.Minute)
	var sessions app.SessionStore
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	monitor := app.NewMonitorService()
	quizzes := app.NewSessionService(bank, sessions)
	handler := transport.NewHandler(monitor, quizzes)
	wsHandler := transport.NewWSHandler(monitor)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/engagement", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting smartlearn monitor server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes seeds a demo quiz; production deployments load content from Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"demo-video": {
			VideoID: "demo-video",
			Questions: []domain.Question{
				{
					Prompt:  "What does the instructor name as the main cause of attention drift?",
					Options: []string{"Multitasking", "Hunger", "Room lighting", "Background music"},
					Answer:  "Multitasking",
					Hint:    "It involves doing more than one thing at once.",
				},
				{
					Prompt:  "How long does refocusing take after an interruption, per the video?",
					Options: []string{"5 seconds", "2 minutes", "23 minutes", "An hour"},
					Answer:  "23 minutes",
					Hint:    "Longer than most people guess.",
				},
			},
		},
	}
}
