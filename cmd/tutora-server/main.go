package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"tutora/backend/internal/config"
	"tutora/backend/internal/events"
	"tutora/backend/internal/metrics"
	tutorav1 "tutora/backend/internal/rpc/tutora/v1"
	"tutora/backend/internal/service/appointments"
	"tutora/backend/internal/service/availability"
	"tutora/backend/internal/store/postgres"
	"tutora/backend/internal/tracing"
	grpcTransport "tutora/backend/internal/transport/grpc"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "tutora-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "tutora-server"),
	)
	slog.SetDefault(log)

	log.Info("starting", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("log_level", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracerProvider(ctx, cfg.TracingServiceName, cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("tracing init failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("err", err))
		}
	}()

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	if cfg.MigrateOnStart {
		log.Info("applying database migrations")
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("database migration failed", slog.Any("err", err))
			os.Exit(1)
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		np, err := events.NewNatsPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, log)
		if err != nil {
			log.Error("nats connection failed", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := np.Close(); err != nil {
				log.Warn("nats drain failed", slog.Any("err", err))
			}
		}()
		publisher = np
	}

	m := metrics.New()

	apptRepo := postgres.NewAppointmentRepo(db)
	ruleRepo := postgres.NewAvailabilityRepo(db)
	dir := postgres.NewDirectoryRepo(db)

	apptSvc := appointments.NewService(apptRepo, dir,
		appointments.WithPublisher(publisher),
		appointments.WithRecorder(m),
		appointments.WithLogger(log),
	)
	availSvc := availability.NewService(ruleRepo, apptRepo, dir,
		availability.WithDefaultRange(cfg.SlotRangeDays),
		availability.WithObserver(m),
		availability.WithLogger(log),
	)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			defaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout),
			m.UnaryServerInterceptor(),
		),
	)
	tutorav1.RegisterBookingServiceServer(grpcServer, grpcTransport.NewBookingServer(apptSvc, availSvc, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		log.Info("metrics server started", slog.String("metrics_addr", cfg.MetricsAddr))
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("server stopped with error", slog.Any("err", err))
		}
	}

	shutdown(log, grpcServer, metricsServer, cfg.ShutdownTimeout)
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, metricsServer *http.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}

	if metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		log.Warn("metrics server shutdown failed", slog.Any("err", err))
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
