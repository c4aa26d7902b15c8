package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/crebit-marketplace/internal/config"
	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/database"
	"github.com/xavierca1/crebit-marketplace/internal/infra/http/handlers"
	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
	"github.com/xavierca1/crebit-marketplace/internal/infra/integration/wompi"
	"github.com/xavierca1/crebit-marketplace/internal/infra/mail"
	"github.com/xavierca1/crebit-marketplace/internal/infra/memstore"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
	"github.com/xavierca1/crebit-marketplace/internal/infra/worker"
	"github.com/xavierca1/crebit-marketplace/internal/logging"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger("crebit-marketplace")
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("refusing to start")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	var (
		db    *sql.DB
		repos repositories
	)
	if cfg.DBDriver == "memory" {
		store := memstore.New()
		if cfg.DemoUserID != "" {
			store.AddCompany(&entity.Company{
				UserID:         cfg.DemoUserID,
				Name:           "Demo",
				Plan:           entity.PlanFreemium,
				Active:         true,
				FreeLeadsLimit: 3,
			})
		}
		repos = memoryRepositories(store)
		logger.Warn("⚠️ running with the in-memory store, data is not persisted")
	} else {
		var err error
		db, err = database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logger.WithError(err).Fatal("failed to migrate database")
		}
		repos = postgresRepositories(db)
	}

	// 2. Queue. Without RabbitMQ notifications and auto-purchase are disabled.
	var (
		producer usecase.QueueProducerInterface
		rabbit   *queue.RabbitMQ
	)
	if r, err := queue.NewRabbitMQ(cfg.RabbitMQURL); err != nil {
		logger.WithError(err).Warn("⚠️ rabbitmq unavailable, events disabled")
	} else {
		rabbit = r
		defer rabbit.Close()
		producer = queue.NewProducer(rabbit.Ch)
	}

	// 3. Gateways and adapters
	var gateway usecase.PaymentGateway
	if cfg.WompiPrivateKey != "" {
		gateway = wompi.NewClient(cfg.WompiPrivateKey, cfg.WompiAPIURL)
	}
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.AppURL)

	// 4. Use cases
	companiesUC := usecase.NewCompanyUseCase(repos.Companies)
	ledgerUC := usecase.NewLedgerUseCase(repos.Companies, producer, logger)
	configUC := usecase.NewAppConfigUseCase(repos.Config, logger)
	purchaseUC := usecase.NewPurchaseLeadUseCase(repos.Leads, repos.Companies, repos.Purchases, producer, logger)
	checkoutUC := usecase.NewCreateCheckoutUseCase(repos.Companies, cfg.WompiPublicKey, cfg.WompiIntegritySecret, cfg.Currency, logger)
	rechargeUC := usecase.NewProcessRechargeUseCase(repos.Recharges, repos.Companies, gateway, producer, cfg.WompiEventsSecret, logger)
	watcher := usecase.NewRechargeWatcher(repos.Companies, cfg.RechargePollInterval, cfg.RechargePollAttempts, logger)
	subscriptionUC := usecase.NewSubscriptionUseCase(repos.Subscriptions, logger)
	matchUC := usecase.NewMatchLeadsUseCase(repos.Leads, repos.Subscriptions)
	autoPurchaseUC := usecase.NewAutoPurchaseUseCase(repos.Leads, repos.Subscriptions, purchaseUC, logger)
	reportUC := usecase.NewReportUseCase(repos.Reports, repos.Purchases, repos.Companies, producer, logger)
	leadAdminUC := usecase.NewLeadAdminUseCase(repos.Leads, configUC, producer, logger)
	notificationUC := usecase.NewNotificationUseCase(repos.Notifications)
	deliverUC := usecase.NewDeliverNotificationUseCase(repos.Notifications, mailSender, logger)

	// 5. Workers
	if rabbit != nil {
		w := queue.NewWorker(rabbit.Ch, deliverUC, autoPurchaseUC, logger)
		go func() {
			if err := w.Start(ctx); err != nil {
				logger.WithError(err).Error("❌ queue worker stopped")
			}
		}()
	}
	go worker.NewQuotaResetWorker(subscriptionUC, cfg.QuotaResetInterval, logger).Start(ctx)

	// 6. Router
	var rabbitConn *amqp091.Connection
	if rabbit != nil {
		rabbitConn = rabbit.Conn
	}
	auth, err := middleware.NewAuth(cfg.JWTSecret)
	if err != nil {
		logger.WithError(err).Fatal("failed to configure authentication")
	}
	webhookLimiter := middleware.NewRateLimiter(120)
	defer webhookLimiter.Stop()
	checkoutLimiter := middleware.NewRateLimiter(30)
	defer checkoutLimiter.Stop()

	router := &handlers.Router{
		Health:          handlers.NewHealthHandler(db, rabbitConn, gateway != nil),
		Checkout:        handlers.NewCheckoutHandler(checkoutUC, watcher, companiesUC, logger),
		Webhook:         handlers.NewWebhookHandler(rechargeUC, cfg.WebhookTimeout, logger),
		Leads:           handlers.NewLeadHandler(matchUC, purchaseUC, leadAdminUC, companiesUC, logger),
		Subscriptions:   handlers.NewSubscriptionHandler(subscriptionUC, companiesUC, logger),
		Reports:         handlers.NewReportHandler(reportUC, companiesUC, logger),
		Notifications:   handlers.NewNotificationHandler(notificationUC, logger),
		Companies:       handlers.NewCompanyHandler(companiesUC, ledgerUC, logger),
		Config:          handlers.NewConfigHandler(configUC, logger),
		Auth:            auth,
		WebhookLimiter:  webhookLimiter,
		CheckoutLimiter: checkoutLimiter,
		AllowedOrigins:  cfg.AllowedOrigins,
		AccessLog:       true,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// /recharges/await holds the request while polling
		WriteTimeout: cfg.RechargePollInterval*time.Duration(cfg.RechargePollAttempts) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("🔥 crebit marketplace API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
