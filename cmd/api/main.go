package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/rxcart-backend/api/controllers"
	"github.com/angelmondragon/rxcart-backend/api/routes"
	"github.com/angelmondragon/rxcart-backend/internal/cart"
	"github.com/angelmondragon/rxcart-backend/internal/checkout"
	"github.com/angelmondragon/rxcart-backend/internal/medicines"
	"github.com/angelmondragon/rxcart-backend/internal/notifications"
	"github.com/angelmondragon/rxcart-backend/internal/orders"
	"github.com/angelmondragon/rxcart-backend/internal/pharmacies"
	"github.com/angelmondragon/rxcart-backend/internal/prescriptions"
	"github.com/angelmondragon/rxcart-backend/internal/reminders"
	"github.com/angelmondragon/rxcart-backend/internal/users"
	razorpaywebhook "github.com/angelmondragon/rxcart-backend/internal/webhooks/razorpay"
	"github.com/angelmondragon/rxcart-backend/pkg/config"
	"github.com/angelmondragon/rxcart-backend/pkg/db"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
	"github.com/angelmondragon/rxcart-backend/pkg/mailer"
	"github.com/angelmondragon/rxcart-backend/pkg/metrics"
	"github.com/angelmondragon/rxcart-backend/pkg/migrate"
	"github.com/angelmondragon/rxcart-backend/pkg/ocr"
	"github.com/angelmondragon/rxcart-backend/pkg/razorpay"
	"github.com/angelmondragon/rxcart-backend/pkg/redis"
	"github.com/angelmondragon/rxcart-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gdb := dbClient.DB()
	medicineRepo := medicines.NewRepository(gdb)
	prescriptionRepo := prescriptions.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	usersRepo := users.NewRepository(gdb)
	notificationsRepo := notifications.NewRepository(gdb)

	directory, err := users.NewDirectory(usersRepo, pharmacies.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create recipient directory", err)
		os.Exit(1)
	}

	var sender mailer.Sender = mailer.LogSender{Logger: logg}
	if cfg.SMTP.Host != "" {
		smtpMailer, err := mailer.New(cfg.SMTP, cfg.Notifications, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create mailer", err)
			os.Exit(1)
		}
		sender = smtpMailer
	} else {
		logg.Warn(context.Background(), "smtp host not configured, notifications are logged only")
	}

	dispatcher, err := notifications.NewDispatcher(
		sender,
		notificationsRepo,
		directory,
		metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
		logg,
		cfg.Notifications,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	medicineService, err := medicines.NewService(medicineRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create medicine service", err)
		os.Exit(1)
	}

	uploads, err := storage.NewLocal(cfg.Uploads.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	prescriptionService, err := prescriptions.NewService(
		dbClient,
		prescriptionRepo,
		medicineRepo,
		uploads,
		ocr.NewTesseract(cfg.OCR, logg),
		dispatcher,
		logg,
		cfg.Uploads.MaxBytes,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create prescription service", err)
		os.Exit(1)
	}

	cartRepo := cart.NewRepository(gdb)
	cartService, err := cart.NewService(dbClient, cartRepo, medicineRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	reminderService, err := reminders.NewService(reminders.NewRepository(gdb), prescriptionRepo, dispatcher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient, dispatcher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	deps := checkout.Deps{
		Tx:            dbClient,
		Cart:          cartRepo,
		Orders:        ordersRepo,
		Medicines:     medicineRepo,
		Prescriptions: prescriptionRepo,
		Reminders:     reminderService,
		Notifier:      dispatcher,
		Logger:        logg,
		Config:        cfg.Checkout,
	}

	var gateway *razorpay.Client
	if cfg.Razorpay.Enabled() {
		gateway, err = razorpay.New(cfg.Razorpay)
		if err != nil {
			logg.Error(context.Background(), "failed to create razorpay client", err)
			os.Exit(1)
		}
		deps.Gateway = gateway
		deps.GatewayKeyID = gateway.KeyID()
	} else {
		logg.Warn(context.Background(), "razorpay keys not configured, online payments disabled")
	}

	checkoutService, err := checkout.NewService(deps)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	svcs := routes.Services{
		Medicines:     medicineService,
		Prescriptions: prescriptionService,
		Cart:          cartService,
		Checkout:      checkoutService,
		Orders:        ordersService,
		Notifications: notificationsService,
		Reminders:     reminderService,
	}

	if gateway != nil {
		guard, err := razorpaywebhook.NewIdempotencyGuard(redisClient, cfg.Razorpay.IdempotencyTTL, "razorpay")
		if err != nil {
			logg.Error(context.Background(), "failed to create razorpay idempotency guard", err)
			os.Exit(1)
		}
		callbackService, err := razorpaywebhook.NewService(razorpaywebhook.ServiceParams{
			Gateway:       gateway,
			Checkout:      checkoutService,
			Orders:        ordersRepo,
			Users:         usersRepo,
			Guard:         guard,
			Logger:        logg,
			PublicBaseURL: cfg.App.PublicBaseURL,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create razorpay callback service", err)
			os.Exit(1)
		}
		svcs.RazorpayCallback = callbackService
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		}, redisClient, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
