package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "creditos-backend/internal/adapter/http"
	mw "creditos-backend/internal/adapter/middleware"
	"creditos-backend/internal/adapter/notifier"
	"creditos-backend/internal/adapter/repository/memory"
	mysqlrepo "creditos-backend/internal/adapter/repository/mysql"
	"creditos-backend/internal/config"
	"creditos-backend/internal/domain/notification"
	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
	"creditos-backend/internal/domain/uow"
	"creditos-backend/internal/infrastructure/cache"
	"creditos-backend/internal/infrastructure/db"
	"creditos-backend/internal/infrastructure/queue"
	personauc "creditos-backend/internal/usecase/persona"
	solicituduc "creditos-backend/internal/usecase/solicitud"
	"creditos-backend/internal/usecase/stats"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	personas    persona.Repository
	solicitudes solicitud.Repository
	uow         uow.UnitOfWork
	ping        httpadp.Check
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	sink, closeSink := newSink(cfg)
	defer func() {
		if err := closeSink.Close(); err != nil {
			slog.Warn("notifier close", "err", err)
		}
	}()

	checks := map[string]httpadp.Check{}
	if st.ping != nil {
		checks["db"] = st.ping
	}

	var createGuard []echo.MiddlewareFunc
	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		// requests still work, only retries are no longer deduplicated
		slog.Warn("redis unavailable, idempotency disabled", "addr", cfg.RedisAddr, "err", err)
	} else {
		defer rdb.Close()
		ttl := time.Duration(cfg.IdempTTLSecs) * time.Second
		createGuard = append(createGuard, mw.Idempotency(rdb, ttl))
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	solUC := solicituduc.NewUsecase(st.personas, st.solicitudes, st.uow, sink)
	handlers := httpadp.Handlers{
		Health:      httpadp.NewHandler(checks),
		Personas:    httpadp.NewPersonaHandler(personauc.NewUsecase(st.personas)),
		Solicitudes: httpadp.NewSolicitudHandler(solUC),
		Validacion:  httpadp.NewValidacionHandler(solUC),
		Stats:       httpadp.NewStatsHandler(stats.NewUsecase(st.personas, st.solicitudes)),
	}

	e := newEcho(cfg)
	httpadp.Register(e, handlers, createGuard...)

	addr := ":" + cfg.AppPort
	go func() {
		log.Printf("listening on %s (store=%s notifier=%s)", addr, cfg.Store, cfg.Notifier)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}

func newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.HTTPErrorHandler = httpadp.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, mw.HeaderIdempotencyKey},
	}))
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(mw.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	return e
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		s := memory.NewStore()
		log.Printf("using in-memory store, data is lost on restart")
		return &stores{personas: s.Personas(), solicitudes: s.Solicitudes(), uow: s.UnitOfWork()}, nil
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if err := mysqlrepo.Migrate(gdb); err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &stores{
		personas:    mysqlrepo.NewPersonaRepository(gdb),
		solicitudes: mysqlrepo.NewSolicitudRepository(gdb),
		uow:         mysqlrepo.NewGormUoW(gdb),
		ping:        sqlDB.PingContext,
	}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newSink picks the delivery channel. The closer flushes pending kafka writes.
func newSink(cfg *config.Config) (notification.Sink, io.Closer) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return notifier.NewSMTPSink(notifier.SMTPConfig{
			Host:    cfg.SMTPHost,
			Port:    cfg.SMTPPort,
			User:    cfg.SMTPUser,
			Pass:    cfg.SMTPPass,
			From:    cfg.SMTPFrom,
			Timeout: time.Duration(cfg.SMTPTimeoutSeconds) * time.Second,
		}), nopCloser{}
	case config.NotifierKafka:
		w := queue.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		return notifier.NewKafkaSink(w), w
	default:
		return notifier.NewLogSink(slog.Default()), nopCloser{}
	}
}
