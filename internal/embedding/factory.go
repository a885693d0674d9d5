package embedding

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	"github.com/Coder-RL/docs-mcp-server/internal/transport/ollama"
	"github.com/Coder-RL/docs-mcp-server/internal/transport/openai"
)

// Provider families accepted in the "<family>:<model>" identifier.
const (
	FamilyOpenAI = "openai"
	FamilyOllama = "ollama"
	FamilyMock   = "mock"
	FamilyHash   = "hash"
)

// Environment variables read by network-backed providers.
const (
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvOpenAIBase = "OPENAI_API_BASE"
	EnvOllamaURL  = "OLLAMA_URL"
)

// Spec is a parsed provider identifier.
type Spec struct {
	Family string
	Model  string
}

// String renders the identifier back in "<family>:<model>" form.
func (s Spec) String() string {
	if s.Model == "" {
		return s.Family
	}
	return s.Family + ":" + s.Model
}

// ParseModel splits "<family>:<model>" at the first colon, so Ollama tags
// such as "ollama:nomic-embed-text:latest" keep their suffix.
// An identifier without a colon is an OpenAI model name.
func ParseModel(id string) Spec {
	id = strings.TrimSpace(id)
	family, model, ok := strings.Cut(id, ":")
	if !ok {
		return Spec{Family: FamilyOpenAI, Model: id}
	}
	return Spec{Family: strings.ToLower(strings.TrimSpace(family)), Model: strings.TrimSpace(model)}
}

// Config selects and parameterizes an embedding provider.
type Config struct {
	// Model is the "<family>:<model>" identifier.
	Model      string
	Dimensions int
	// BaseURL and APIKey take precedence over the environment.
	BaseURL string
	APIKey  string
	Logger  *zap.Logger
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

type constructor func(spec Spec, cfg *Config) (domain.Provider, error)

var families = map[string]constructor{
	FamilyOpenAI: newOpenAI,
	FamilyOllama: newOllama,
	FamilyMock:   newHash,
	FamilyHash:   newHash,
}

// New builds the provider named by cfg.Model. Misconfiguration is reported
// here, before any traffic, as a *domain.ProviderConfigurationError.
func New(cfg Config) (domain.Provider, error) {
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Dimensions < 0 {
		return nil, domain.NewProviderConfiguration(cfg.Model, "dimensions must not be negative")
	}

	spec := ParseModel(cfg.Model)
	if spec.Family == "" {
		return nil, domain.NewProviderConfiguration(cfg.Model, "provider family is empty")
	}

	build, ok := families[spec.Family]
	if !ok {
		return nil, domain.NewProviderConfiguration(spec.Family, "unknown provider family")
	}

	p, err := build(spec, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.Logger.Info("embedding provider configured",
		zap.String("family", spec.Family),
		zap.String("model", spec.Model),
		zap.Int("dimensions", p.Dimensions()),
	)
	return p, nil
}

func newOpenAI(spec Spec, cfg *Config) (domain.Provider, error) {
	if spec.Model == "" {
		return nil, domain.NewProviderConfiguration(FamilyOpenAI, "model name is required")
	}
	apiKey := firstNonEmpty(cfg.APIKey, cfg.Getenv(EnvOpenAIKey))
	if apiKey == "" {
		return nil, domain.NewProviderConfiguration(FamilyOpenAI, EnvOpenAIKey+" is not set")
	}

	return openai.NewEmbedder(&openai.Config{
		APIKey:     apiKey,
		BaseURL:    firstNonEmpty(cfg.BaseURL, cfg.Getenv(EnvOpenAIBase)),
		Model:      spec.Model,
		Dimensions: cfg.Dimensions,
		Provider:   FamilyOpenAI,
		Logger:     cfg.Logger,
	}), nil
}

func newOllama(spec Spec, cfg *Config) (domain.Provider, error) {
	if spec.Model == "" {
		return nil, domain.NewProviderConfiguration(FamilyOllama, "model name is required")
	}

	return ollama.NewEmbedder(&ollama.Config{
		BaseURL:    firstNonEmpty(cfg.BaseURL, cfg.Getenv(EnvOllamaURL), ollama.DefaultBaseURL),
		Model:      spec.Model,
		Dimensions: cfg.Dimensions,
		Logger:     cfg.Logger,
	}), nil
}

func newHash(_ Spec, cfg *Config) (domain.Provider, error) {
	return NewHashEmbedder(cfg.Dimensions), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
