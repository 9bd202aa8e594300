package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/xltables/internal/async"
	"github.com/joseph-ayodele/xltables/internal/export"
	"github.com/joseph-ayodele/xltables/internal/ingest"
	"github.com/joseph-ayodele/xltables/internal/repository"
	"github.com/joseph-ayodele/xltables/internal/server"
	"github.com/joseph-ayodele/xltables/internal/store"
	"github.com/joseph-ayodele/xltables/internal/tables"
)

var (
	serveAddr string
	serveLoad string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC server",
	Long: `Start the xltables gRPC server (xltables.v1.TablesService).

Workbooks arrive through UploadWorkbook, through IngestPath, or by being dropped
into ingest.watch_dir when it is set. Each successful ingestion replaces the
whole table set. Ingestion history is kept when database.dsn is set
("file:xltables.db" for SQLite, "postgres://..." for Postgres).

Examples:
  xltables serve
  xltables serve --addr :9090 --load model.xlsx
  XLTABLES_INGEST_WATCH_DIR=./inbox xltables serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if serveAddr != "" {
			cfg.Server.GRPCAddr = serveAddr
		}
		logger.Info("config loaded", "config", cfg.String())

		segCfg, err := segmentConfig(cfg)
		if err != nil {
			return err
		}
		st := store.New()
		opts := []ingest.Option{ingest.WithDecodeOptions(decodeOptions(cfg))}

		if cfg.Database.DSN != "" {
			db, err := repository.Open(ctx, repository.Config{
				DSN:             cfg.Database.DSN,
				MaxConns:        cfg.Database.MaxConns,
				MaxConnLifetime: cfg.Database.MaxConnLifetime,
				MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
				DialTimeout:     cfg.Database.DialTimeout,
			}, logger)
			if err != nil {
				return err
			}
			defer db.Close(logger)
			if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
				logger.Error("failed to ping database", "error", err)
				return err
			}
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			opts = append(opts, ingest.WithHistory(repository.NewIngestionRepository(db, logger)))
		}

		ingestor := ingest.NewService(st, segCfg, logger, opts...)
		if serveLoad != "" {
			if _, err := ingestor.IngestPath(ctx, serveLoad); err != nil {
				return fmt.Errorf("initial load: %w", err)
			}
		}

		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			return err
		}

		// base64 inflates uploads by a third; leave room for the envelope.
		maxMsg := cfg.Server.MaxUploadSize/3*4 + 64<<10
		grpcServer := grpc.NewServer(
			grpc.UnaryInterceptor(server.UnaryInterceptor(logger)),
			grpc.MaxRecvMsgSize(maxMsg),
		)
		svc := server.NewTablesService(ingestor, tables.NewService(st, logger), export.NewService(st, logger), cfg.Server.MaxUploadSize, logger)
		server.RegisterTablesServer(grpcServer, svc)

		healthServer := health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
		if cfg.Server.Reflection {
			reflection.Register(grpcServer)
		}

		var queue *async.IngestQueue
		if dir := cfg.Ingest.WatchDir; dir != "" {
			queue = async.NewIngestQueue(ingestor, logger, async.WithProcessTimeout(cfg.Ingest.Timeout))
			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       []string{dir},
				InitialScan: true,
				Debounce:    cfg.Ingest.Debounce,
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			go pumpWatchEvents(ctx, events, errs, queue, logger)
			logger.Info("watching for workbooks", "dir", dir)
		}

		serveErr := make(chan error, 1)
		logger.Info("xltables listening", "addr", cfg.Server.GRPCAddr)
		go func() { serveErr <- grpcServer.Serve(lis) }()

		select {
		case <-ctx.Done():
		case err := <-serveErr:
			logger.Error("gRPC serve error", "error", err)
			return err
		}

		logger.Info("shutting down")
		healthServer.Shutdown()
		if queue != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ingest.Timeout)
			queue.Shutdown(shutdownCtx)
			cancel()
		}
		grpcServer.GracefulStop()
		return nil
	},
}

// pumpWatchEvents forwards watcher paths to the ingest queue until ctx ends.
func pumpWatchEvents(ctx context.Context, events <-chan string, errs <-chan error, q async.Queue, logger *slog.Logger) {
	for {
		select {
		case p, ok := <-events:
			if !ok {
				return
			}
			if err := q.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now()}); err != nil {
				logger.Warn("watch.enqueue_failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "gRPC listen address (overrides server.grpc_addr)")
	serveCmd.Flags().StringVar(&serveLoad, "load", "", "workbook to ingest before serving")

	rootCmd.AddCommand(serveCmd)
}
