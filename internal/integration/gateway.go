package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/valter-silva-au/ai-coder/pkg/models"
	"go.uber.org/zap"
)

// PlaceholderMarker starts every text the gateway returns in place of
// generated code, so consumers can tell a failed generation from output.
const PlaceholderMarker = "# AI generation failed"

// Provider is one code-generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// IsPlaceholder reports whether text is a gateway failure placeholder.
func IsPlaceholder(text string) bool {
	return strings.HasPrefix(text, PlaceholderMarker)
}

// Placeholder renders err as the text returned in place of generated code.
func Placeholder(err error) string {
	return fmt.Sprintf("%s\n# Error: %v\n# Manual implementation required.", PlaceholderMarker, err)
}

// Gateway selects a provider by name and guarantees that Generate always
// returns text: provider errors and panics become placeholders.
type Gateway struct {
	selected  string
	providers map[string]Provider
	logger    *zap.Logger
}

// NewGateway creates a Gateway that dispatches to providers[selected].
func NewGateway(selected string, providers map[string]Provider, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{selected: selected, providers: providers, logger: logger}
}

// NewGatewayFromConfig wires the local runner and the configured cloud
// provider and selects one of them by ai.default.
func NewGatewayFromConfig(cfg models.AIConfig, executor CLIExecutor, logger *zap.Logger) *Gateway {
	providers := map[string]Provider{
		models.ProviderLocal: NewLocalProvider(executor, cfg.Local),
		models.ProviderCloud: NewCloudProvider(cfg.Cloud),
	}
	return NewGateway(cfg.Default, providers, logger)
}

// NewCloudProvider returns the cloud backend named by cfg.Provider. Names
// without an implementation get a provider that always reports
// ErrNotImplemented.
func NewCloudProvider(cfg models.CloudAIConfig) Provider {
	switch cfg.Provider {
	case models.CloudOpenAI:
		return NewOpenAIProvider(cfg)
	case models.CloudGemini:
		return NewGeminiProvider(cfg)
	default:
		return unimplementedProvider{name: cfg.Provider}
	}
}

// Generate calls the selected provider. Blank output counts as a failure.
func (g *Gateway) Generate(ctx context.Context, prompt string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("provider %s panicked: %v", g.selected, r)
			g.logger.Error("AI model call failed", zap.Error(err))
			text = Placeholder(err)
		}
	}()

	provider, ok := g.providers[g.selected]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnsupportedProvider, g.selected)
		g.logger.Error("AI model call failed", zap.Error(err))
		return Placeholder(err)
	}

	out, err := provider.Generate(ctx, prompt)
	if err != nil {
		g.logger.Error("AI model call failed", zap.String("provider", provider.Name()), zap.Error(err))
		return Placeholder(err)
	}
	if strings.TrimSpace(out) == "" {
		g.logger.Error("AI model call failed", zap.String("provider", provider.Name()), zap.Error(ErrEmptyCompletion))
		return Placeholder(fmt.Errorf("%s: %w", provider.Name(), ErrEmptyCompletion))
	}
	return out
}

type unimplementedProvider struct {
	name string
}

func (p unimplementedProvider) Name() string { return p.name }

func (p unimplementedProvider) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %q", ErrNotImplemented, p.name)
}
