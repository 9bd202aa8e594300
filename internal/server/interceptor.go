package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/xltables/internal/common"
)

// RequestIDHeader is read from incoming metadata; a new id is minted when absent.
const RequestIDHeader = "x-request-id"

// UnaryInterceptor tags each call with a request id, maps domain errors onto
// gRPC codes and logs the outcome.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		rid := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				rid = v[0]
			}
		}
		if rid == "" {
			rid = uuid.NewString()
		}
		l := logger.With("request_id", rid, "method", info.FullMethod)
		ctx = common.WithLogger(common.WithRequestID(ctx, rid), l)

		resp, err := handler(ctx, req)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			err = common.ToStatus(err)
			l.Warn("rpc.failed", "code", status.Code(err).String(), "elapsed_ms", elapsed, "error", err)
			return nil, err
		}
		l.Info("rpc.ok", "elapsed_ms", elapsed)
		return resp, nil
	}
}
