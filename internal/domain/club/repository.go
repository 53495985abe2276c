package club

import "context"

type Repository interface {
	GetByID(ctx context.Context, clubID string) (Club, bool, error)
	GetByExtRef(ctx context.Context, extRef string) (Club, bool, error)
	List(ctx context.Context) ([]Club, error)
}
