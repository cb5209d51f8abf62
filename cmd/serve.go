package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-authorizenet/app/anet"
	"github.com/vibast-solutions/ms-go-authorizenet/app/controller"
	"github.com/vibast-solutions/ms-go-authorizenet/app/repository"
	"github.com/vibast-solutions/ms-go-authorizenet/app/service"
	"github.com/vibast-solutions/ms-go-authorizenet/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the purchase API and the Authorize.Net webhook endpoint.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, paymentService, cleanup := mustCreatePaymentService()
	defer cleanup()

	purchaseController := controller.NewPurchaseController(paymentService)
	e := setupHTTPServer(purchaseController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(purchaseController *controller.PurchaseController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", purchaseController.Health)

	purchases := e.Group("/purchases")
	purchases.POST("", purchaseController.CreatePurchase)
	purchases.GET("/:request_key", purchaseController.GetPurchase)
	purchases.POST("/:request_key/charge", purchaseController.ChargePurchase)
	purchases.POST("/:request_key/cancel", purchaseController.CancelPurchase)

	e.POST("/webhooks/authorizenet", purchaseController.HandleWebhook)

	return e
}

func mustCreatePaymentService() (*config.Config, *service.PaymentService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	profileRepo := repository.NewPaymentProfileRepository(db)
	purchaseRepo := repository.NewPurchaseRequestRepository(db)
	logRepo := repository.NewProviderLogRepository(db)

	gateway := anet.NewClient(anet.Config{
		LiveMode:                   cfg.AuthorizeNet.LiveMode,
		APIBaseURL:                 cfg.AuthorizeNet.APIBaseURL,
		WebhookBaseURL:             cfg.AuthorizeNet.WebhookBaseURL,
		HTTPTimeout:                cfg.AuthorizeNet.HTTPTimeout,
		SubscribeMaxAttempts:       cfg.AuthorizeNet.SubscribeMaxAttempts,
		SubscribeRetryDelay:        cfg.AuthorizeNet.SubscribeRetryDelay,
		SubscribeRetryDelaySandbox: cfg.AuthorizeNet.SubscribeRetryDelaySandbox,
	})

	paymentService := service.NewPaymentService(
		profileRepo,
		purchaseRepo,
		logRepo,
		gateway,
		cfg.AuthorizeNet,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, paymentService, cleanup
}
