package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
	"github.com/teatri-al/theatre-ticketing/internal/mailer"
	"github.com/teatri-al/theatre-ticketing/internal/payment"
	"github.com/teatri-al/theatre-ticketing/internal/repository"
	appvalidator "github.com/teatri-al/theatre-ticketing/internal/validator"
	"github.com/teatri-al/theatre-ticketing/internal/vcs"
)

const serviceName = "theatre-ticketing-api"

var (
	version = vcs.Version()
)

type application struct {
	config         config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	eventRepo     domain.EventRepository
	seatRepo      domain.SeatRepository
	priceAreaRepo domain.PriceAreaRepository
	orderRepo     domain.OrderRepository

	paymentProvider domain.PaymentProvider
}

type config struct {
	port    int
	env     string
	siteURL string
	db      struct {
		dsn          string
		maxOpenConns int
		maxIdleTime  time.Duration
	}
	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	payment struct {
		sellerID  string
		secretKey string
		baseURL   string
		sandbox   bool
	}
	admin struct {
		passwordHash string
	}
	holdDuration     time.Duration
	sweepInterval    time.Duration
	otelCollectorUrl string
}

func Run() error {
	var cfg config

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.siteURL, "site-url", "http://localhost:3000", "Public base URL of this service")

	flag.StringVar(&cfg.db.dsn, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.redis.url, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.smtp.host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "Teatri <tickets@teatri.al>", "SMTP sender")

	flag.StringVar(&cfg.payment.sellerID, "payment-seller-id", "", "2Checkout seller account id")
	flag.StringVar(&cfg.payment.secretKey, "payment-secret-key", "", "2Checkout secret key")
	flag.StringVar(&cfg.payment.baseURL, "payment-base-url", "https://www.2checkout.com", "2Checkout hosted checkout origin")
	flag.BoolVar(&cfg.payment.sandbox, "payment-sandbox", false, "Treat 2Checkout orders as demo orders")

	flag.StringVar(&cfg.admin.passwordHash, "admin-password-hash", "", "Bcrypt hash of the admin pricing API password")

	flag.DurationVar(&cfg.holdDuration, "hold-duration", domain.DefaultHoldDuration, "How long an unpaid order keeps its seats")
	flag.DurationVar(&cfg.sweepInterval, "sweep-interval", time.Minute, "How often expired holds are swept")

	flag.StringVar(&cfg.otelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	validator := appvalidator.NewValidator()

	db, err := newDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eventRepo := repository.NewPostgresEventRepository(db)
	seatRepo := repository.NewPostgresSeatRepository(db)
	priceAreaRepo := repository.NewPostgresPriceAreaRepository(db)
	orderRepo := repository.NewPostgresOrderRepository(db)

	paymentProvider := payment.New(payment.Config{
		SellerID:  cfg.payment.sellerID,
		SecretKey: cfg.payment.secretKey,
		BaseURL:   cfg.payment.baseURL,
		SiteURL:   cfg.siteURL,
		Sandbox:   cfg.payment.sandbox,
	})

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	app := &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       validator,
		mailer:          mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender),
		sessionManager:  newSessionManager(redisClient),
		eventRepo:       eventRepo,
		seatRepo:        seatRepo,
		priceAreaRepo:   priceAreaRepo,
		orderRepo:       orderRepo,
		paymentProvider: paymentProvider,
	}

	return app.run()
}

func newSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.db.maxIdleTime
	config.MaxConns = int32(cfg.db.maxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *application) run() error {
	telemetryShutdown, err := app.initTelemetry()
	if err != nil {
		return err
	}
	defer telemetryShutdown(context.Background())

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go app.runSweeper(sweeperCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.GetHealth)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", app.ListEventsHandler)
		r.Get("/{eventId}", app.GetEventHandler)
		r.Get("/{eventId}/seats", app.GetEventSeatsHandler)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", app.CreateOrderHandler)
		r.Get("/{orderId}", app.GetOrderHandler)
		r.Get("/{orderId}/tickets", app.GetOrderTicketsHandler)
		r.Get("/{orderId}/calendar", app.GetOrderCalendarHandler)
		r.Post("/{orderId}/resend-email", app.ResendOrderEmailHandler)
	})

	r.Route("/payments/2checkout", func(r chi.Router) {
		r.Post("/notification", app.PaymentNotificationHandler)
		r.Post("/ipn", app.PaymentIPNHandler)
	})

	r.Post("/sweep", app.SweepHandler)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", app.AdminLoginHandler)
		r.Post("/logout", app.AdminLogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAdmin)
			r.Get("/events/{eventId}/rules", app.ListPriceRulesHandler)
			r.Post("/events/{eventId}/rules", app.CreatePriceRuleHandler)
			r.Delete("/rules/{ruleId}", app.DeletePriceRuleHandler)
		})
	})

	return r
}
