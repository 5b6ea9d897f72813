package counters

import "context"

type Repository interface {
	Next(ctx context.Context) (int64, error)
	Current(ctx context.Context) (int64, error)
}
