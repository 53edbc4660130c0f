// Package catalog is the single source of truth for backend model
// definitions: identifier, provider, per-token pricing, and capability tier.
// The built-in registry can be extended or re-priced at startup from an
// optional YAML file.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier is a capability/price band used to steer roster proposals.
type Tier string

const (
	TierBudget      Tier = "budget"
	TierBalanced    Tier = "balanced"
	TierPerformance Tier = "performance"
)

// IsValid reports whether the tier is one of the known bands.
func (t Tier) IsValid() bool {
	switch t {
	case TierBudget, TierBalanced, TierPerformance:
		return true
	}
	return false
}

// Model describes one backend LLM: identity, pricing, and tier.
type Model struct {
	ModelID     string  `json:"model_id" yaml:"model_id"`
	DisplayName string  `json:"display_name" yaml:"display_name"`
	Provider    string  `json:"provider" yaml:"provider"`
	Tier        Tier    `json:"tier" yaml:"tier"`
	Description string  `json:"description" yaml:"description"`
	InputPer1M  float64 `json:"input_per_1m" yaml:"input_per_1m"`
	OutputPer1M float64 `json:"output_per_1m" yaml:"output_per_1m"`
}

// Providers recognised by the completion router.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMistral   = "mistral"
	ProviderGoogle    = "google"
)

// Catalog is an ordered model registry. The zero value is unusable; build
// one with Default or Load.
type Catalog struct {
	models []Model
	byID   map[string]int
}

// Default returns the built-in registry.
func Default() *Catalog {
	return newCatalog(builtinModels)
}

// Load returns the built-in registry merged with overrides from a YAML file.
// Entries in the file replace built-in models with the same id and append
// otherwise. An empty path returns the plain default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var file struct {
		Models []Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	merged := make([]Model, len(builtinModels))
	copy(merged, builtinModels)
	index := make(map[string]int, len(merged))
	for i, m := range merged {
		index[m.ModelID] = i
	}
	for _, m := range file.Models {
		if m.ModelID == "" {
			return nil, fmt.Errorf("catalog file: model with empty model_id")
		}
		if !m.Tier.IsValid() {
			return nil, fmt.Errorf("catalog file: model %s has unknown tier %q", m.ModelID, m.Tier)
		}
		if i, ok := index[m.ModelID]; ok {
			merged[i] = m
		} else {
			index[m.ModelID] = len(merged)
			merged = append(merged, m)
		}
	}
	return newCatalog(merged), nil
}

func newCatalog(models []Model) *Catalog {
	c := &Catalog{
		models: models,
		byID:   make(map[string]int, len(models)),
	}
	for i, m := range models {
		c.byID[m.ModelID] = i
	}
	return c
}

// All returns every model in registry order.
func (c *Catalog) All() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}

// ByID returns the model with the given id, or nil if unknown.
func (c *Catalog) ByID(id string) *Model {
	if i, ok := c.byID[id]; ok {
		m := c.models[i]
		return &m
	}
	return nil
}

// ByProvider returns all models for one provider.
func (c *Catalog) ByProvider(provider string) []Model {
	var out []Model
	for _, m := range c.models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}

// ByTier returns all models in one tier, optionally restricted to the given
// providers (nil means no restriction).
func (c *Catalog) ByTier(tier Tier, providers []string) []Model {
	var out []Model
	for _, m := range c.models {
		if m.Tier != tier {
			continue
		}
		if providers != nil && !contains(providers, m.Provider) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Available returns the models usable with the given providers.
func (c *Catalog) Available(providers []string) []Model {
	var out []Model
	for _, m := range c.models {
		if contains(providers, m.Provider) {
			out = append(out, m)
		}
	}
	return out
}

// DefaultModel picks the first model in the requested tier among the given
// providers, falling back to neighbouring tiers and finally to any available
// model. Returns "" only when no provider has any model at all.
func (c *Catalog) DefaultModel(tier Tier, providers []string) string {
	order := []Tier{tier}
	switch tier {
	case TierBudget:
		order = append(order, TierBalanced, TierPerformance)
	case TierPerformance:
		order = append(order, TierBalanced, TierBudget)
	default:
		order = append(order, TierBudget, TierPerformance)
	}
	for _, t := range order {
		if ms := c.ByTier(t, providers); len(ms) > 0 {
			return ms[0].ModelID
		}
	}
	return ""
}

// ExamplesByTier returns up to three example model ids per tier drawn from
// distinct providers, used to seed proposal prompts.
func (c *Catalog) ExamplesByTier(providers []string) map[Tier][]string {
	examples := make(map[Tier][]string, 3)
	for _, tier := range []Tier{TierBudget, TierBalanced, TierPerformance} {
		seen := make(map[string]bool)
		for _, m := range c.ByTier(tier, providers) {
			if seen[m.Provider] || len(examples[tier]) >= 3 {
				continue
			}
			examples[tier] = append(examples[tier], m.ModelID)
			seen[m.Provider] = true
		}
	}
	return examples
}

// Cost prices a completion: tokens are billed per million at the model's
// input/output rates. Unknown models cost zero.
func (c *Catalog) Cost(modelID string, tokensIn, tokensOut int) float64 {
	m := c.ByID(modelID)
	if m == nil {
		return 0
	}
	return float64(tokensIn)/1e6*m.InputPer1M + float64(tokensOut)/1e6*m.OutputPer1M
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var builtinModels = []Model{
	// OpenAI
	{ModelID: "gpt-5", DisplayName: "GPT-5", Provider: ProviderOpenAI, Tier: TierPerformance,
		Description: "Advanced reasoning capabilities", InputPer1M: 15.00, OutputPer1M: 75.00},
	{ModelID: "gpt-4o", DisplayName: "GPT-4o", Provider: ProviderOpenAI, Tier: TierBalanced,
		Description: "Optimized multimodal model", InputPer1M: 5.00, OutputPer1M: 15.00},
	{ModelID: "gpt-4-turbo", DisplayName: "GPT-4 Turbo", Provider: ProviderOpenAI, Tier: TierBalanced,
		Description: "Fast and capable", InputPer1M: 10.00, OutputPer1M: 30.00},
	{ModelID: "gpt-4o-mini", DisplayName: "GPT-4o Mini", Provider: ProviderOpenAI, Tier: TierBudget,
		Description: "Affordable intelligence", InputPer1M: 0.15, OutputPer1M: 0.60},
	{ModelID: "gpt-3.5-turbo", DisplayName: "GPT-3.5 Turbo", Provider: ProviderOpenAI, Tier: TierBudget,
		Description: "Fast and economical", InputPer1M: 0.50, OutputPer1M: 1.50},

	// Anthropic
	{ModelID: "claude-opus-4-5-20251101", DisplayName: "Claude Opus 4.5", Provider: ProviderAnthropic, Tier: TierPerformance,
		Description: "Best for complex workflows", InputPer1M: 5.00, OutputPer1M: 25.00},
	{ModelID: "claude-sonnet-4-5-20250929", DisplayName: "Claude Sonnet 4.5", Provider: ProviderAnthropic, Tier: TierBalanced,
		Description: "Superior coding, 1M context", InputPer1M: 4.00, OutputPer1M: 20.00},
	{ModelID: "claude-3-opus-20240229", DisplayName: "Claude 3 Opus", Provider: ProviderAnthropic, Tier: TierPerformance,
		Description: "Most capable Claude 3", InputPer1M: 15.00, OutputPer1M: 75.00},
	{ModelID: "claude-3-haiku-20240307", DisplayName: "Claude 3 Haiku", Provider: ProviderAnthropic, Tier: TierBudget,
		Description: "Fast and economical", InputPer1M: 0.25, OutputPer1M: 1.25},

	// Mistral
	{ModelID: "mistral-large-latest", DisplayName: "Mistral Large", Provider: ProviderMistral, Tier: TierPerformance,
		Description: "Most capable Mistral", InputPer1M: 4.00, OutputPer1M: 12.00},
	{ModelID: "mistral-medium-latest", DisplayName: "Mistral Medium", Provider: ProviderMistral, Tier: TierBalanced,
		Description: "Balanced performance", InputPer1M: 2.70, OutputPer1M: 8.10},
	{ModelID: "mistral-small-latest", DisplayName: "Mistral Small", Provider: ProviderMistral, Tier: TierBudget,
		Description: "Fast and economical", InputPer1M: 1.00, OutputPer1M: 3.00},

	// Google
	{ModelID: "gemini-1.5-pro", DisplayName: "Gemini 1.5 Pro", Provider: ProviderGoogle, Tier: TierBalanced,
		Description: "Advanced capabilities", InputPer1M: 1.25, OutputPer1M: 5.00},
	{ModelID: "gemini-1.5-flash", DisplayName: "Gemini 1.5 Flash", Provider: ProviderGoogle, Tier: TierBudget,
		Description: "Fast responses", InputPer1M: 0.075, OutputPer1M: 0.30},
	{ModelID: "gemini-2.0-flash-exp", DisplayName: "Gemini 2.0 Flash", Provider: ProviderGoogle, Tier: TierPerformance,
		Description: "Latest Gemini, very fast", InputPer1M: 0.00, OutputPer1M: 0.00},
}
