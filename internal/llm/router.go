package llm

import (
	"context"
	"fmt"
	"time"

	"anjoman/internal/catalog"
)

// Router dispatches completion requests to the provider client owning the
// requested model and prices the returned usage from catalog rates.
type Router struct {
	cat     *catalog.Catalog
	clients map[string]Client
}

// NewRouter creates a router over the given catalog with no providers
// configured; add them with Register.
func NewRouter(cat *catalog.Catalog) *Router {
	return &Router{
		cat:     cat,
		clients: make(map[string]Client),
	}
}

// Register attaches a client for one provider. Registering an empty client
// is a no-op so callers can pass conditionally constructed clients.
func (r *Router) Register(provider string, client Client) {
	if client == nil {
		return
	}
	r.clients[provider] = client
}

// Providers returns the providers with a registered client.
func (r *Router) Providers() []string {
	out := make([]string, 0, len(r.clients))
	// Stable order keeps prompts and proposals deterministic.
	for _, p := range []string{
		catalog.ProviderOpenAI,
		catalog.ProviderAnthropic,
		catalog.ProviderMistral,
		catalog.ProviderGoogle,
	} {
		if _, ok := r.clients[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Complete routes the request by catalog provider and fills in the cost.
func (r *Router) Complete(ctx context.Context, req Request) (*Response, error) {
	model := r.cat.ByID(req.Model)
	if model == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, req.Model)
	}
	client, ok := r.clients[model.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: no client for provider %s", ErrUnknownModel, model.Provider)
	}

	resp, err := client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Cost = r.cat.Cost(req.Model, resp.TokensIn, resp.TokensOut)
	return resp, nil
}

// ProviderConfig carries the credentials and endpoints needed to build the
// default provider set.
type ProviderConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	AnthropicBaseURL string
	MistralKey       string
	MistralBaseURL   string
	GeminiKey        string
	GeminiBaseURL    string
	CallTimeout      time.Duration
}

// NewRouterFromConfig builds a router with a client per provider that has a
// configured API key. Providers without keys are simply absent, which also
// removes their models from roster proposals.
func NewRouterFromConfig(cat *catalog.Catalog, cfg ProviderConfig) *Router {
	r := NewRouter(cat)
	if cfg.OpenAIKey != "" {
		base := cfg.OpenAIBaseURL
		if base == "" {
			base = OpenAIBaseURL
		}
		r.Register(catalog.ProviderOpenAI, NewOpenAIClient(cfg.OpenAIKey, base, cfg.CallTimeout))
	}
	if cfg.AnthropicKey != "" {
		base := cfg.AnthropicBaseURL
		if base == "" {
			base = AnthropicBaseURL
		}
		r.Register(catalog.ProviderAnthropic, NewAnthropicClient(cfg.AnthropicKey, base, cfg.CallTimeout))
	}
	if cfg.MistralKey != "" {
		base := cfg.MistralBaseURL
		if base == "" {
			base = MistralBaseURL
		}
		r.Register(catalog.ProviderMistral, NewOpenAIClient(cfg.MistralKey, base, cfg.CallTimeout))
	}
	if cfg.GeminiKey != "" {
		base := cfg.GeminiBaseURL
		if base == "" {
			base = GeminiBaseURL
		}
		r.Register(catalog.ProviderGoogle, NewGeminiClient(cfg.GeminiKey, base, cfg.CallTimeout))
	}
	return r
}
