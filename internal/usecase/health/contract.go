package health

import "context"

// DBPinger checks Redis availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks that the documentation index exists.
type IndexChecker interface {
	IndexReady(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
