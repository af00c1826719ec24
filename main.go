package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"profit-calculator/pkg/api"
	"profit-calculator/pkg/clients/ghl"
	"profit-calculator/pkg/clients/supabase"
	"profit-calculator/pkg/config"
	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/services"
	"profit-calculator/pkg/store"
	"profit-calculator/pkg/web"
)

func main() {
	envErr := godotenv.Load()

	// Initialize configuration
	cfg := config.LoadConfig()

	zl := logger.New(cfg.Log.Level, cfg.Log.Format)
	log := logger.NewZapAdapter(zl)
	if envErr != nil {
		log.Debug("no .env file loaded", map[string]interface{}{"reason": envErr.Error()})
	}
	if err := cfg.GHL.Validate(); err != nil {
		// Lead submission reports this per request; the calculator still works.
		log.Warn("CRM is not configured", nil)
	}

	err := run(cfg, log)
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	// Initialize API clients
	crm := ghl.NewClient(cfg.GHL, log)
	submissions, closeStore, err := newSubmissionStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := newSessionStore(cfg, log)
	if err != nil {
		return err
	}

	// Initialize services
	leadService := services.NewLeadService(crm, submissions, cfg.GHL, log)
	wizard := services.NewWizard(sessions, leadService, log)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.WithError(err).Error("failed to parse templates", nil)
		return err
	}

	gin.SetMode(cfg.Server.GinMode)

	handlers := api.NewHandlers(wizard, leadService, cfg, log)
	router := api.NewRouter(handlers, renderer, log)

	// Start the server
	log.Info("server starting", map[string]interface{}{"port": cfg.Server.Port})
	if err := router.Run(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("error starting server", nil)
		return err
	}
	return nil
}

// newSubmissionStore prefers the hosted Supabase table, then a direct
// Postgres connection. The store is nil when neither is configured.
func newSubmissionStore(cfg *config.Config, log logger.Logger) (store.SubmissionStore, func(), error) {
	noop := func() {}

	switch {
	case cfg.Supabase.Enabled():
		log.Info("mirroring submissions to Supabase", map[string]interface{}{"table": cfg.Supabase.Table})
		return supabase.NewClient(cfg.Supabase, log, &http.Client{}), noop, nil
	case cfg.Database.Enabled():
		pg, err := store.OpenPostgres(cfg.Database.URL, log)
		if err != nil {
			log.WithError(err).Error("failed to open database", nil)
			return nil, noop, err
		}
		closeDB := func() {
			if err := pg.Close(); err != nil {
				log.WithError(err).Warn("failed to close database", nil)
			}
		}

		ctx := context.Background()
		if err := pg.Ping(ctx); err != nil {
			closeDB()
			log.WithError(err).Error("failed to connect to database", nil)
			return nil, noop, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			closeDB()
			log.WithError(err).Error("failed to create submissions table", nil)
			return nil, noop, err
		}
		log.Info("mirroring submissions to Postgres", nil)
		return pg, closeDB, nil
	default:
		return nil, noop, nil
	}
}

func newSessionStore(cfg *config.Config, log logger.Logger) (services.SessionStore, error) {
	if !cfg.Redis.Enabled() {
		return services.NewMemorySessionStore(cfg.Server.SessionTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Error("failed to connect to redis", map[string]interface{}{"addr": cfg.Redis.Addr})
		return nil, err
	}
	log.Info("using redis session store", map[string]interface{}{"addr": cfg.Redis.Addr})
	return services.NewRedisSessionStore(client, cfg.Server.SessionTTL), nil
}
