package server

import (
	"context"

	"google.golang.org/grpc"

	apperrors "github.com/xtding233/farkle-backend/internal/errors"
)

// domainStatusInterceptor reports domain errors from unary handlers as gRPC
// statuses carrying the mapped code.
func domainStatusInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if de, ok := apperrors.As(err); ok {
		return resp, de.ToGRPCStatus()
	}
	return resp, err
}
