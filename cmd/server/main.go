package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/seafresh/backend/internal/application/catalog"
	contactapp "github.com/seafresh/backend/internal/application/contact"
	identityapp "github.com/seafresh/backend/internal/application/identity"
	notificationapp "github.com/seafresh/backend/internal/application/notification"
	promotionapp "github.com/seafresh/backend/internal/application/promotion"
	reportapp "github.com/seafresh/backend/internal/application/report"
	tradeapp "github.com/seafresh/backend/internal/application/trade"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/payment"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/auth"
	"github.com/seafresh/backend/internal/infrastructure/cache"
	"github.com/seafresh/backend/internal/infrastructure/config"
	"github.com/seafresh/backend/internal/infrastructure/email"
	"github.com/seafresh/backend/internal/infrastructure/event"
	"github.com/seafresh/backend/internal/infrastructure/logger"
	"github.com/seafresh/backend/internal/infrastructure/oauth"
	paymentinfra "github.com/seafresh/backend/internal/infrastructure/payment"
	"github.com/seafresh/backend/internal/infrastructure/persistence"
	"github.com/seafresh/backend/internal/infrastructure/printing"
	"github.com/seafresh/backend/internal/infrastructure/realtime"
	"github.com/seafresh/backend/internal/infrastructure/scheduler"
	"github.com/seafresh/backend/internal/infrastructure/storage"
	"github.com/seafresh/backend/internal/infrastructure/telemetry"
	"github.com/seafresh/backend/internal/interfaces/http/handler"
	"github.com/seafresh/backend/internal/interfaces/http/middleware"
	"github.com/seafresh/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			SeaFresh API
//	@version		1.0
//	@description	Storefront and admin API for the SeaFresh seafood shop

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						seafresh_sid

const (
	oauthStateTTL     = 10 * time.Minute
	webhookDedupeTTL  = 72 * time.Hour
	eventDedupeTTL    = 24 * time.Hour
	uploadPresignTTL  = 15 * time.Minute
	localUploadPrefix = "/uploads"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	}, cfg.App.Name, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting SeaFresh API",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "tracer provider", tp.Shutdown)

	metrics := telemetry.NewMetrics()

	db, err := persistence.NewDatabase(ctx, cfg.Database,
		logger.NewGormLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.DB.Use(telemetry.NewDBPlugin(telemetry.DBPluginConfig{
		Tracing:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      !cfg.App.IsProduction(),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, metrics, log)); err != nil {
		return err
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("DB pool metrics not registered", zap.Error(err))
		}
	}
	log.Info("Database connected")

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	var sessions identity.SessionStore
	if redisClient != nil {
		sessions = auth.NewRedisSessionStore(redisClient, cfg.Session.TTL)
	} else {
		log.Warn("Redis unavailable, sessions are kept in memory and lost on restart")
		sessions = auth.NewInMemorySessionStore(cfg.Session.TTL)
	}
	idempotency := cache.NewIdempotencyStore(redisClient, log)
	if c, ok := idempotency.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	repos := persistence.NewRepositories(db.DB)

	bus := event.NewInMemoryEventBus(event.DefaultBusConfig(), log)
	bus.SetObserver(metrics)

	hub := realtime.NewHub(cfg.CORS.AllowOrigins, log)
	hub.SetGauge(metrics.WebsocketConnections)
	defer hub.Close()

	sender, err := email.NewSender(cfg.Email, log)
	if err != nil {
		return err
	}
	mailer := notificationapp.NewMailer(sender, notificationapp.MailerConfig{
		ShopName:     cfg.Shop.Name,
		ClientURL:    cfg.App.ClientURL,
		InboxAddress: cfg.Email.InboxAddress,
	})

	gateway := newGateway(cfg, log)
	pricing := cfg.Shop.Pricing()

	// Identity
	authService := identityapp.NewAuthService(repos.Users, sessions, log)
	authService.SetEventPublisher(bus)
	if cfg.Google.Enabled() {
		provider, err := oauth.NewGoogleProvider(cfg.Google)
		if err != nil {
			return err
		}
		authService.SetGoogleOAuth(provider, auth.NewStateSigner(cfg.Session.Secret, oauthStateTTL))
	} else {
		log.Info("Google sign-in disabled")
	}
	userService := identityapp.NewUserService(repos.Users, sessions, log)
	userService.SetEventPublisher(bus)

	// Catalog
	productService := catalogapp.NewProductService(repos.Products, log)
	productService.SetEventPublisher(bus)
	objects, local, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	uploadService := catalogapp.NewUploadService(objects, catalogapp.UploadServiceConfig{
		MaxImageBytes:   cfg.Storage.MaxImageBytes,
		UploadURLExpiry: uploadPresignTTL,
	}, log)

	// Trade
	orderService := tradeapp.NewOrderService(repos.Orders, repos.Products, repos.Coupons, repos.Users, gateway,
		tradeapp.OrderServiceConfig{
			Pricing:         pricing,
			MaxItemQuantity: cfg.Shop.MaxItemQuantity,
			CODEnabled:      cfg.Shop.CODEnabled,
			PendingOrderTTL: cfg.Shop.PendingOrderTTL,
		}, log)
	orderService.SetEventPublisher(bus)
	if cfg.Invoice.Enabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfig{
			RemoteURL:      cfg.Invoice.ChromeURL,
			DefaultTimeout: cfg.Invoice.RenderTimeout,
			NoSandbox:      true,
		}, log)
		defer func() { _ = chrome.Close() }()
		orderService.SetInvoiceRenderer(printing.NewInvoiceRenderer(printing.Seller{
			Name:    cfg.Shop.Name,
			Address: cfg.Invoice.Address,
			GSTIN:   cfg.Invoice.GSTIN,
		}, chrome, cfg.Invoice.RenderTimeout))
	}
	paymentService := tradeapp.NewPaymentService(repos.Orders, repos.Users, gateway, idempotency,
		tradeapp.PaymentServiceConfig{
			Currency:      cfg.Shop.Currency,
			ShopName:      cfg.Shop.Name,
			CODEnabled:    cfg.Shop.CODEnabled,
			Pricing:       pricing,
			WebhookDedupe: webhookDedupeTTL,
		}, log)
	paymentService.SetEventPublisher(bus)

	// Promotion
	couponService := promotionapp.NewCouponService(repos.Coupons, log)
	couponService.SetEventPublisher(bus)
	spinService, err := promotionapp.NewSpinService(repos.Users, repos.Coupons, repos.Coupons,
		promotionapp.SpinServiceConfig{
			Cooldown:       cfg.Spin.Cooldown,
			RewardTTL:      cfg.Spin.RewardTTL,
			MinOrderAmount: cfg.Spin.MinOrderAmount,
			Segments:       cfg.Spin.Segments,
		}, log)
	if err != nil {
		return err
	}
	spinService.SetEventPublisher(bus)

	// Notifications and contact
	notificationService := notificationapp.NewNotificationService(repos.Notifications, repos.Users, log)
	notificationService.SetPusher(hub)
	contactService := contactapp.NewContactService(repos.Contact, mailer, log)
	dashboardService := reportapp.NewDashboardService(repos.Dashboard, cfg.Shop.LowStockThreshold, log)

	subscribe(bus, idempotency, log,
		notificationapp.NewOrderEventHandler(notificationService, repos.Users, log).WithMailer(mailer),
		notificationapp.NewSpinRewardHandler(notificationService, log),
		telemetry.NewOrderMetricsHandler(metrics),
	)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "event bus", bus.Stop)

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log)
		sched.SetObserver(metrics.ObserveJob)
		if err := sched.Register(scheduler.NewPendingOrderSweep(orderService, cfg.Scheduler.SweepInterval, log)); err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer shutdownWithTimeout(log, "scheduler", sched.Stop)
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return err
	}

	authLimiter := newLimiter(cfg.RateLimit.Enabled, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
	contactLimiter := newLimiter(cfg.RateLimit.Enabled, cfg.RateLimit.ContactRequests, cfg.RateLimit.ContactWindow)
	spinLimiter := newLimiter(cfg.RateLimit.Enabled, cfg.RateLimit.SpinRequests, cfg.RateLimit.SpinWindow)
	globalLimiter := newLimiter(cfg.RateLimit.Enabled, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	for _, l := range []*middleware.RateLimiter{authLimiter, contactLimiter, spinLimiter, globalLimiter} {
		if l != nil {
			defer l.Close()
		}
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowOrigins
	cors.AllowMethods = cfg.CORS.AllowMethods
	cors.AllowHeaders = cfg.CORS.AllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: cfg.Telemetry.Enabled}),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(metrics),
		middleware.SecureWithConfig(security),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if globalLimiter != nil {
		engine.Use(middleware.RateLimit(globalLimiter, "global"))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, cfg.App.Env).
		AddCheck("database", handler.PingFunc(db.Ping))
	if redisClient != nil {
		systemHandler.AddCheck("redis", handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}
	engine.GET("/health", systemHandler.Health)
	if cfg.HTTP.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	cookie := middleware.SessionCookie{
		Name:     cfg.Session.CookieName,
		TTL:      cfg.Session.TTL,
		Domain:   cfg.Session.Domain,
		Secure:   cfg.Session.Secure,
		SameSite: middleware.ParseSameSite(cfg.Session.SameSite),
	}
	uploadHandler := handler.NewUploadHandler(uploadService, localObjects(local))
	handlers := router.Handlers{
		System:        systemHandler,
		Auth:          handler.NewAuthHandler(authService, cookie, cfg.App.ClientURL),
		Users:         handler.NewUserHandler(userService),
		Products:      handler.NewProductHandler(productService),
		Uploads:       uploadHandler,
		Orders:        handler.NewOrderHandler(orderService),
		Payments:      handler.NewPaymentHandler(paymentService),
		Coupons:       handler.NewCouponHandler(couponService),
		Spin:          handler.NewSpinHandler(spinService),
		Notifications: handler.NewNotificationHandler(notificationService, hub),
		Contact:       handler.NewContactHandler(contactService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	}
	guards := router.Guards{
		Sessions:     middleware.NewSessionAuthenticator(sessions, cookie, log),
		AuthLimit:    limitMiddleware(authLimiter, "auth"),
		ContactLimit: limitMiddleware(contactLimiter, "contact"),
		SpinLimit:    limitMiddleware(spinLimiter, "spin"),
	}
	router.NewRouter(engine).Register(router.StoreRoutes(handlers, guards)...).Setup()
	if local != nil {
		router.RegisterLocalUploads(engine, uploadHandler)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}

// connectRedis returns nil when Redis is disabled or unreachable; callers
// fall back to in-memory stores.
func connectRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis connection failed", zap.Error(err))
		return nil
	}
	log.Info("Redis connected", zap.String("host", cfg.Redis.Host))
	return client
}

// newGateway returns nil when Razorpay is not configured; online checkout is
// then rejected and only cash on delivery works.
func newGateway(cfg *config.Config, log *zap.Logger) payment.Gateway {
	adapter, err := paymentinfra.NewRazorpayAdapter(cfg.Razorpay, log)
	if err != nil {
		log.Warn("Razorpay disabled", zap.Error(err))
		return nil
	}
	return adapter
}

// newObjectStorage uses the S3 bucket when one is configured, otherwise an
// in-memory store served by this process under /uploads.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalogapp.ObjectStorageService, *storage.MemoryObjectStorage, error) {
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	}
	log.Warn("No storage bucket configured, product images are kept in memory")
	local := storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + localUploadPrefix)
	return local, local, nil
}

func localObjects(local *storage.MemoryObjectStorage) handler.LocalObjects {
	if local == nil {
		return nil
	}
	return local
}

// subscribe registers each handler traced and deduplicated by event ID
func subscribe(bus *event.InMemoryEventBus, store shared.IdempotencyStore, log *zap.Logger, handlers ...shared.EventHandler) {
	for _, h := range handlers {
		bus.Subscribe(telemetry.TraceEventHandler(event.NewIdempotentHandler(h, store, eventDedupeTTL, log)))
	}
}

func newLimiter(enabled bool, limit int, window time.Duration) *middleware.RateLimiter {
	if !enabled {
		return nil
	}
	return middleware.NewRateLimiter(limit, window)
}

func limitMiddleware(l *middleware.RateLimiter, name string) gin.HandlerFunc {
	if l == nil {
		return nil
	}
	return middleware.RateLimit(l, name)
}

func shutdownWithTimeout(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
