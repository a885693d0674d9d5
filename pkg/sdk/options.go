package sdk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	standalone bool

	model      string
	dimensions int
	baseURL    string
	apiKey     string
	embedder   Embedder

	cache    bool
	cacheTTL time.Duration

	keyPrefix       string
	hnswM           int
	hnswEFConstruct int
	readiness       time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis sets the Redis addresses. At least one is required.
func WithRedis(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = addrs
	})
}

// WithCredentials sets the Redis ACL user and password.
func WithCredentials(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithDatabase selects the Redis logical database.
func WithDatabase(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = db
	})
}

// WithStandalone connects to a single Redis node without cluster
// topology discovery, e.g. behind a proxy.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithEmbeddingModel selects the provider by "<family>:<model>" identifier,
// e.g. "openai:text-embedding-3-small", "ollama:nomic-embed-text" or
// "mock:local". Defaults to "openai:text-embedding-3-small".
func WithEmbeddingModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = model
	})
}

// WithDimensions sets the embedding vector size. Defaults to 1536.
func WithDimensions(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = n
	})
}

// WithProviderEndpoint overrides the provider base URL and API key that
// otherwise come from the environment.
func WithProviderEndpoint(baseURL, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
		c.apiKey = apiKey
	})
}

// WithEmbedder plugs in a custom embedding provider.
// WithEmbeddingModel then only names it in logs, metrics and cache keys.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingCache caches embeddings in Redis for ttl. Zero ttl keeps
// entries forever.
func WithEmbeddingCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cache = true
		c.cacheTTL = ttl
	})
}

// WithKeyPrefix namespaces every Redis key. It must end with ":".
// Defaults to "docs:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithReadinessTimeout bounds the wait for Redis in New. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readiness = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
