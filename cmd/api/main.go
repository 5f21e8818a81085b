// @title                       Matrimony API
// @version                     1.0
// @description                 Identity, role resolution and contact-disclosure control plane for the matrimony profile catalog.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/bandhan/matrimony-api/internal/api"
	"github.com/bandhan/matrimony-api/internal/core/service"
	mongostore "github.com/bandhan/matrimony-api/internal/infrastructure/db/mongo"
	redisstore "github.com/bandhan/matrimony-api/internal/infrastructure/db/redis"
	"github.com/bandhan/matrimony-api/internal/infrastructure/http/handlers"
	"github.com/bandhan/matrimony-api/internal/infrastructure/identity"
	"github.com/bandhan/matrimony-api/internal/infrastructure/queue"
	"github.com/bandhan/matrimony-api/internal/pkg/config"
	"github.com/bandhan/matrimony-api/internal/pkg/sessiontoken"
	"github.com/bandhan/matrimony-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet; emit one JSON line and exit.
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "matrimony-api",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	accounts := mongostore.NewAccountRepository(db)
	profiles := mongostore.NewProfileRepository(db)
	disclosures := mongostore.NewDisclosureRepository(db)
	premiums := mongostore.NewPremiumRepository(db)
	payments := mongostore.NewPaymentRepository(db)
	auditRepo := mongostore.NewAuditRepository(db)

	if err := mongostore.EnsureIndexes(ctx, accounts, profiles, disclosures, premiums, payments, auditRepo); err != nil {
		return err
	}

	// --- Identity and session tokens ---
	verifierOpts := identity.Options{
		Issuer:     cfg.Identity.Issuer,
		Audience:   cfg.Identity.Audience,
		HMACSecret: cfg.Identity.HMACSecret,
	}
	if cfg.Identity.PublicKeysFile != "" {
		keys, err := identity.LoadPublicKeys(cfg.Identity.PublicKeysFile)
		if err != nil {
			return err
		}
		verifierOpts.PublicKeys = keys
	}
	verifier, err := identity.NewVerifier(verifierOpts)
	if err != nil {
		return err
	}
	issuer, err := sessiontoken.NewIssuer(cfg.Session.JWTSecret, cfg.Session.Issuer, cfg.Session.TTL)
	if err != nil {
		return err
	}

	// --- Audit trail ---
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(auditRepo, logger.Component("audit")), logger.Component("audit"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workerCtx)

	// --- Services ---
	roles := service.NewRoleResolver(accounts, redisstore.NewPrivilegeCache(rdb, cfg.Redis.RoleTTL), logger.Component("roles"))
	paymentSvc := service.NewPaymentService(payments, service.PaymentPrice{
		AmountMinor: cfg.Payment.ContactRequestPrice,
		Currency:    cfg.Payment.Currency,
	}, dispatcher, logger.Component("payments"))

	svc := api.Services{
		Session:     service.NewSessionService(verifier, accounts, issuer, dispatcher, logger.Component("session")),
		Roles:       roles,
		Accounts:    service.NewAccountService(accounts, roles, dispatcher, logger.Component("accounts")),
		Payments:    paymentSvc,
		Disclosures: service.NewDisclosureService(disclosures, profiles, paymentSvc, roles, dispatcher, logger.Component("disclosures")),
		Premium:     service.NewPremiumService(premiums, profiles, accounts, roles, dispatcher, logger.Component("premium")),
		Contacts:    service.NewContactService(profiles, disclosures, roles),
	}

	e := api.NewRouter(api.RouterConfig{
		Tokens:           issuer,
		SessionRateLimit: cfg.Session.RateLimit,
		EnableSwagger:    !cfg.IsProduction(),
		Readiness: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		Log: log,
	}, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting matrimony-api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit queue not fully drained")
	}
	return nil
}
