package main

import (
	"context"
	"database/sql"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/cache"
	"social-scheduler/infrastructure/cipher"
	"social-scheduler/infrastructure/clients"
	"social-scheduler/infrastructure/configuration"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/infrastructure/persistence"
	"social-scheduler/infrastructure/pubsub"
	"social-scheduler/infrastructure/servicebus"
	handler "social-scheduler/interfaces/http"
	"social-scheduler/server"
	"social-scheduler/usecase"
)

func main() {
	configuration.LoadEnvFromFile("config.env", ".env")

	cfg, err := configuration.LoadConfig()
	if err != nil {
		logger.GetLogger().Fatalf("loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := initiateDatabase(cfg)
	if err != nil {
		logger.GetLogger().Fatalf("connecting to %s: %v", cfg.Database.Vendor, err)
	}
	defer db.Close()
	if err := persistence.VerifySchema(db, cfg.Database.Vendor); err != nil {
		logger.GetLogger().Fatalf("verifying schema: %v", err)
	}

	redisClient, err := cache.NewCache(cfg.RedisClient)
	if err != nil {
		logger.GetLogger().Fatalf("connecting to redis: %v", err)
	}
	defer redisClient.Close()

	tokenCipher, err := cipher.New(cfg.Security.EncryptionKey)
	if err != nil {
		logger.GetLogger().Fatalf("initializing token cipher: %v", err)
	}

	var credRepo repository.ICredential
	var postRepo repository.IScheduledPost
	var userRepo repository.IUser
	switch cfg.Database.Vendor {
	case "mssql":
		credRepo = persistence.NewCredentialRepositoryMSSQL(db)
		postRepo = persistence.NewPostRepositoryMSSQL(db)
		userRepo = persistence.NewUserRepositoryMSSQL(db)
	default:
		credRepo = persistence.NewCredentialRepository(db)
		postRepo = persistence.NewPostRepository(db)
		userRepo = persistence.NewUserRepository(db)
	}

	// The audit trail degrades gracefully; a missing Mongo never blocks posting.
	var auditRepo repository.IDispatchAudit
	if cfg.Mongo.URI != "" {
		mongoClient, merr := persistence.NewMongoDB(cfg.Mongo.URI)
		if merr != nil {
			logger.GetLogger().Warnf("audit store unavailable, continuing without: %v", merr)
		} else {
			defer mongoClient.Disconnect(context.Background())
			auditRepo = persistence.NewAuditRepository(mongoClient, cfg.Mongo.Database)
		}
	}

	notifier := initiateNotifier(ctx, cfg)

	registry := clients.NewRegistry(cfg.OAuth)
	limiter := usecase.NewRateLimitUsecase(cache.NewRateLimitCounter(redisClient), tierTable(cfg.RateLimits))
	tokens := usecase.NewTokenUsecase(credRepo, registry, tokenCipher)
	posts := usecase.NewPostUsecase(postRepo, limiter)
	users := usecase.NewUserUsecase(userRepo, cfg.App.SecretKey)
	dispatcher := usecase.NewDispatcher(postRepo, tokens, registry, auditRepo, notifier, cfg.Scheduler)

	router := server.NewRouter(
		cfg.App.SecretKey,
		handler.NewUserHandler(users),
		handler.NewCredentialHandler(tokens, limiter),
		handler.NewPostHandler(posts, limiter),
	)

	httpServer := &nethttp.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.GetLogger().WithField("port", cfg.App.Port).Info("http server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			return err
		}
		return nil
	})
	for i := 0; i < cfg.Scheduler.Workers; i++ {
		worker := i
		g.Go(func() error {
			logger.GetLogger().WithField("worker", worker).Info("dispatcher worker starting")
			if err := dispatcher.Run(gctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.GetLogger().Fatalf("shutting down: %v", err)
	}
	logger.GetLogger().Info("shutdown complete")
}

// tierTable resolves the rate-limit table from the built-in tiers plus any
// configured ceiling overrides.
func tierTable(cfg configuration.RateLimits) map[model.TierName]model.Tier {
	overrides := map[model.TierName]map[model.ActionKind]model.Limit{}
	for tier, actions := range cfg.Tiers {
		limits := map[model.ActionKind]model.Limit{}
		for action, override := range actions {
			limits[model.ActionKind(action)] = model.Limit{
				Ceiling: override.Ceiling,
				Window:  time.Duration(override.WindowSeconds) * time.Second,
			}
		}
		overrides[model.TierName(tier)] = limits
	}
	return model.TiersWithOverrides(overrides)
}

func initiateDatabase(cfg *configuration.Config) (*sql.DB, error) {
	switch cfg.Database.Vendor {
	case "mssql":
		return persistence.NewMSSQLDB(cfg.Database.Mssql)
	case "psql", "":
		return persistence.NewPostgreSQLDB(cfg.Database.Psql)
	default:
		return nil, fmt.Errorf("unknown database vendor %q", cfg.Database.Vendor)
	}
}

// initiateNotifier picks the configured outcome sink, preferring Service Bus
// when both are configured. No sink means outcomes are only logged.
func initiateNotifier(ctx context.Context, cfg *configuration.Config) repository.INotifier {
	if cfg.ServiceBus.Namespace != "" {
		sender, err := servicebus.NewOutcomeSender(cfg.ServiceBus.Namespace, cfg.ServiceBus.Queue)
		if err != nil {
			logger.GetLogger().Warnf("service bus unavailable, continuing without: %v", err)
		} else {
			return sender
		}
	}
	if cfg.Pubsub.ProjectID != "" {
		publisher, err := pubsub.NewOutcomePublisher(ctx, cfg.Pubsub.ProjectID, cfg.Pubsub.Topic)
		if err != nil {
			logger.GetLogger().Warnf("pubsub unavailable, continuing without: %v", err)
		} else {
			return publisher
		}
	}
	return nil
}
