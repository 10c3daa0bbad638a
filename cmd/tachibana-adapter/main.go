package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/internal/api"
	"github.com/kabudata/tachibana-adapter/internal/calendar"
	"github.com/kabudata/tachibana-adapter/internal/metrics"
	"github.com/kabudata/tachibana-adapter/internal/poller"
	"github.com/kabudata/tachibana-adapter/internal/publisher"
	"github.com/kabudata/tachibana-adapter/internal/store"
	"github.com/kabudata/tachibana-adapter/internal/tachibana"
	"github.com/kabudata/tachibana-adapter/pkg/config"
	"github.com/kabudata/tachibana-adapter/pkg/logger"
	"github.com/kabudata/tachibana-adapter/pkg/secrets"
	"github.com/kabudata/tachibana-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	log := logger.L()

	loc := cfg.MarketLocation()
	if !(calendar.JPX{}).IsTradingDay(time.Now().In(loc)) {
		log.Info("main.market_closed_today")
		return
	}

	creds, err := resolveCredentials(ctx, cfg, log)
	if err != nil {
		log.Fatal("main.credentials_unavailable", zap.Error(err))
	}

	log.Info("main.connecting_store", zap.String("dsn", utils.MaskDSN(cfg.DatabaseURL)))
	st, err := store.NewHybrid(ctx, log, cfg.DatabaseURL, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("main.store_unavailable", zap.Error(err))
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatal("main.schema_failed", zap.Error(err))
	}

	codes, err := targetCodes(ctx, cfg, st)
	if err != nil {
		log.Fatal("main.no_target_codes", zap.Error(err))
	}
	log.Info("main.targets_resolved", zap.Int("codes", len(codes)))

	var events poller.EventSink
	if cfg.NATSURL != "" {
		pub, err := publisher.New(log, cfg.NATSURL, cfg.ServiceName)
		if err != nil {
			log.Warn("main.nats_unavailable", zap.Error(err))
		} else {
			defer pub.Close()
			events = pub
		}
	}

	metrics.StartServer(cfg.MetricsAddr)

	session := tachibana.NewSession(
		tachibana.NewClient(log, cfg.FetchTimeout),
		log, cfg.BrokerBaseURL, creds, loc)
	if err := session.Login(ctx); err != nil {
		log.Fatal("main.login_failed", zap.Error(err))
	}

	p := poller.New(log, poller.Config{
		Interval:     cfg.PollInterval,
		MaxWorkers:   cfg.MaxWorkers,
		FetchTimeout: cfg.FetchTimeout,
		Cutoff:       cfg.SessionCutoff,
		Location:     loc,
	}, session, st, events)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	(&api.Handler{Logger: log, Store: st, Poller: p}).Register(app)
	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Error("main.api_server_stopped", zap.Error(err))
		}
	}()
	defer func() {
		if err := app.Shutdown(); err != nil {
			log.Warn("main.api_shutdown_failed", zap.Error(err))
		}
	}()

	if err := p.Run(ctx, codes); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("main.poller_stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("main.session_finished")
}

// resolveCredentials prefers AWS Secrets Manager when a secret id is
// configured, otherwise reads the account from the environment.
func resolveCredentials(ctx context.Context, cfg *config.Config, log *zap.Logger) (secrets.Credentials, error) {
	if cfg.SecretID != "" {
		provider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return secrets.Credentials{}, err
		}
		resolver := secrets.NewResolver(log, provider, secrets.NewCache[secrets.Credentials](cfg.CredentialTTL))
		return resolver.Resolve(ctx, cfg.SecretID)
	}

	creds := secrets.Credentials{
		UserID:    cfg.BrokerUserID,
		Password:  cfg.BrokerPassword,
		Password2: cfg.BrokerPassword2,
	}
	if creds.UserID == "" || creds.Password == "" {
		return secrets.Credentials{}, errors.New("TACHIBANA_USERID and TACHIBANA_PASSWORD are required")
	}
	return creds, nil
}

// targetCodes resolves the issue codes to poll. An explicit TARGET_CODES list
// wins; otherwise the instrument master is consulted by API id.
func targetCodes(ctx context.Context, cfg *config.Config, st store.Store) ([]string, error) {
	if len(cfg.TargetCodes) > 0 {
		return cfg.TargetCodes, nil
	}
	return st.CodesByAPIID(ctx, cfg.APIID)
}
