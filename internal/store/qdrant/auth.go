package qdrant

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// apiKeyInterceptor attaches the api-key metadata Qdrant Cloud expects.
func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context, method string, req, reply any,
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption,
	) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
