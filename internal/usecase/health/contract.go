package health

import "context"

// StorePinger checks product store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks embedding/LLM provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexProber checks that the product search index exists.
type IndexProber interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}
