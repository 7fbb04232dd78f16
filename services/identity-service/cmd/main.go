package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hansol-jeong/plume/services/identity-service/internal/config"
	"github.com/hansol-jeong/plume/services/identity-service/internal/handler"
	"github.com/hansol-jeong/plume/services/identity-service/internal/repository"
	"github.com/hansol-jeong/plume/services/identity-service/internal/usecase"
	"github.com/hansol-jeong/plume/shared/auth"
	"github.com/hansol-jeong/plume/shared/mailer"
	"github.com/hansol-jeong/plume/shared/provider"
	"github.com/hansol-jeong/plume/shared/registry"
	"github.com/hansol-jeong/plume/shared/validation"
)

func main() {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "identity-service").
		Logger()

	cfg := config.New(&logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	db := client.Database(cfg.Mongo.Database)

	users := repository.NewUserMongoRepository(ctx, &logger, db)
	codes := usecase.NewCodeRegistry(users)
	issuer := auth.NewTokenIssuer(cfg.Token.Secret, cfg.Token.Issuer, cfg.Token.ExpiresIn)
	mail := mailer.NewMailer(&logger)
	google := provider.NewGoogleOAuthProvider(cfg.Google.ClientID)

	validate, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize validator")
	}

	identityUC := usecase.NewIdentityUsecase(users, codes, issuer, mail, cfg)
	passwordResetUC := usecase.NewPasswordResetUsecase(users, codes, mail, cfg)
	emailVerificationUC := usecase.NewEmailVerificationUsecase(users, codes)

	h := handler.New(
		identityUC,
		passwordResetUC,
		emailVerificationUC,
		users,
		issuer,
		google,
		validate,
		&logger,
		cfg.CookieSecure,
	)

	if cfg.Consul.Addr != "" {
		deregister, err := registry.Register(&logger, registry.Registration{
			ConsulAddr:  cfg.Consul.Addr,
			ServiceName: cfg.Consul.ServiceName,
			Address:     cfg.Consul.ServiceAddr,
			Port:        cfg.Consul.ServicePort,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to register with consul")
		}
		defer deregister()
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: h.Routes(),
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("identity service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down http server")
	}
}
