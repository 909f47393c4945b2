package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dsergienko/leadgate/internal/api/router"
	"github.com/dsergienko/leadgate/internal/bot"
	appconfig "github.com/dsergienko/leadgate/internal/config"
	"github.com/dsergienko/leadgate/internal/crm"
	"github.com/dsergienko/leadgate/internal/domaincheck"
	"github.com/dsergienko/leadgate/internal/forms"
	"github.com/dsergienko/leadgate/internal/geo"
	"github.com/dsergienko/leadgate/internal/i18n"
	"github.com/dsergienko/leadgate/internal/notify"
	"github.com/dsergienko/leadgate/internal/observability/metrics"
	"github.com/dsergienko/leadgate/internal/submission"
	"github.com/dsergienko/leadgate/internal/validation"
	"github.com/dsergienko/leadgate/pkg/logging"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadgate API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Startup verification: a missing translation or a broken postal
	// pattern should fail here, not on a visitor's submission.
	bundle, err := i18n.Load()
	if err != nil {
		logger.Error("failed to load locales", "error", err)
		os.Exit(1)
	}
	if err := bundle.VerifyComplete(bundle.Locales()); err != nil {
		logger.Error("locale dictionaries incomplete", "error", err)
		os.Exit(1)
	}
	if err := validation.VerifyPostalTable(); err != nil {
		logger.Error("postal pattern table invalid", "error", err)
		os.Exit(1)
	}

	registry := forms.NewRegistry()
	formCfgs, err := registry.RegisterFromJSON(cfg.FormsJSON, forms.Defaults{
		ProductName:    cfg.ProductName,
		ProductID:      cfg.ProductID,
		Locale:         cfg.Locale,
		EmailTitle:     cfg.EmailTitle,
		EmailRecipient: cfg.EmailRecipient,
		CRMEmbedHash:   cfg.CRMEmbedHash,
		BotBackendURL:  cfg.BotBackendURL,
		BotName:        cfg.BotName,
	})
	if err != nil {
		logger.Error("failed to register forms", "error", err)
		os.Exit(1)
	}
	for _, fc := range formCfgs {
		logger.Info("form registered", "form", fc.FormID, "target", fc.Target.String())
	}

	registerer := prometheus.NewRegistry()
	registerer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	submissionMetrics := metrics.NewSubmissionMetrics(registerer)

	geoResolver := geo.NewResolver(geo.Config{
		LookupURL: cfg.GeoLookupURL,
		Timeout:   cfg.GeoLookupTimeout,
		Logger:    logger,
	})

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		logger.Info("no SendGrid API key, using stub email sender")
		emailSender = notify.NewStubEmailSender(logger)
	}

	var crmClient *crm.Client
	if cfg.CRMConnectorURL != "" {
		crmClient, err = crm.New(crm.Config{
			ConnectorURL: cfg.CRMConnectorURL,
			Token:        cfg.CRMConnectorToken,
			Timeout:      cfg.CRMTimeout,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("failed to create CRM client", "error", err)
			os.Exit(1)
		}
	}

	var botClient *bot.Client
	if cfg.BotBackendURL != "" {
		botClient, err = bot.New(bot.Config{
			BackendURL: cfg.BotBackendURL,
			BotName:    cfg.BotName,
			Logger:     logger,
		})
		if err != nil {
			logger.Error("failed to create bot client", "error", err)
			os.Exit(1)
		}
	}

	var domainChecker domaincheck.Checker
	if cfg.CheckEmailDomain {
		domainChecker = domaincheck.NewMXChecker(cfg.DomainCheckTimeout, logger)
	}

	presenter := notify.NewPresenter(bundle)

	serviceCfg := submission.Config{
		Registry:          registry,
		Email:             emailSender,
		Domain:            domainChecker,
		Presenter:         presenter,
		Metrics:           submissionMetrics,
		Logger:            logger,
		EmbedPollInterval: cfg.EmbedPollInterval,
		EmbedPollTimeout:  cfg.EmbedPollTimeout,
	}
	if crmClient != nil {
		serviceCfg.CRM = crmClient
	}
	if botClient != nil {
		serviceCfg.Bot = botClient
	}
	service := submission.NewService(serviceCfg)

	formsHandler := submission.NewHandler(submission.HandlerConfig{
		Service:             service,
		Registry:            registry,
		Geo:                 geoResolver,
		Bundle:              bundle,
		Logger:              logger,
		DefaultPhoneCountry: cfg.DefaultPhoneCountry,
		PreferredCountries:  cfg.PreferredCountries,
		ExcludedCountries:   cfg.ExcludedCountries,
		GTMID:               cfg.GTMID,
	})

	routerCfg := &router.Config{
		Logger:             logger,
		FormsHandler:       formsHandler,
		MailHandler:        notify.NewHandler(emailSender, logger),
		MetricsHandler:     promhttp.HandlerFor(registerer, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	if domainChecker != nil {
		routerCfg.DomainHandler = domaincheck.NewHandler(domainChecker, logger)
	}
	if crmClient != nil {
		routerCfg.CRMHandler = crm.NewHandler(crmClient, logger)
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
