package feed

import "context"

// PageLoader fetches one page of items. Implementations may be slow and may
// fail; the engine never retries on its own.
type PageLoader interface {
	FetchPage(ctx context.Context, pageIndex, pageSize int) ([]Item, error)
}

// PageLoaderFunc adapts a plain function to PageLoader.
type PageLoaderFunc func(ctx context.Context, pageIndex, pageSize int) ([]Item, error)

// FetchPage calls f.
func (f PageLoaderFunc) FetchPage(ctx context.Context, pageIndex, pageSize int) ([]Item, error) {
	return f(ctx, pageIndex, pageSize)
}
