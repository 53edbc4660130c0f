package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsWellFormed(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.All())
	for _, m := range c.All() {
		assert.NotEmpty(t, m.ModelID)
		assert.NotEmpty(t, m.Provider)
		assert.True(t, m.Tier.IsValid(), "model %s has tier %q", m.ModelID, m.Tier)
		assert.GreaterOrEqual(t, m.InputPer1M, 0.0)
		assert.GreaterOrEqual(t, m.OutputPer1M, 0.0)
	}
}

func TestByID(t *testing.T) {
	c := Default()
	m := c.ByID("gpt-4o-mini")
	require.NotNil(t, m)
	assert.Equal(t, ProviderOpenAI, m.Provider)
	assert.Nil(t, c.ByID("no-such-model"))
}

func TestByTierRespectsProviderFilter(t *testing.T) {
	c := Default()
	got := c.ByTier(TierBudget, []string{ProviderAnthropic})
	require.NotEmpty(t, got)
	for _, m := range got {
		assert.Equal(t, ProviderAnthropic, m.Provider)
		assert.Equal(t, TierBudget, m.Tier)
	}
}

func TestDefaultModelFallsBackAcrossTiers(t *testing.T) {
	c := Default()

	got := c.DefaultModel(TierBalanced, []string{ProviderOpenAI})
	m := c.ByID(got)
	require.NotNil(t, m)
	assert.Equal(t, TierBalanced, m.Tier)

	// An empty provider list yields nothing rather than an uncallable model.
	assert.Empty(t, c.DefaultModel(TierBalanced, []string{}))
}

func TestCostPricesPerMillionTokens(t *testing.T) {
	c := Default()
	// gpt-4o-mini: $0.15 in, $0.60 out per 1M.
	got := c.Cost("gpt-4o-mini", 1_000_000, 500_000)
	assert.InDelta(t, 0.15+0.30, got, 1e-9)

	assert.Zero(t, c.Cost("no-such-model", 1000, 1000))
}

func TestExamplesByTierDistinctProviders(t *testing.T) {
	c := Default()
	examples := c.ExamplesByTier([]string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderMistral})
	for tier, ids := range examples {
		assert.LessOrEqual(t, len(ids), 3)
		seen := map[string]bool{}
		for _, id := range ids {
			m := c.ByID(id)
			require.NotNil(t, m)
			assert.Equal(t, tier, m.Tier)
			assert.False(t, seen[m.Provider], "tier %s repeats provider %s", tier, m.Provider)
			seen[m.Provider] = true
		}
	}
}

func TestLoadMergesOverridesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	yaml := `
models:
  - model_id: gpt-4o-mini
    display_name: GPT-4o Mini (repriced)
    provider: openai
    tier: budget
    input_per_1m: 0.10
    output_per_1m: 0.40
  - model_id: in-house-7b
    display_name: In-House 7B
    provider: openai
    tier: budget
    input_per_1m: 0.01
    output_per_1m: 0.02
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	repriced := c.ByID("gpt-4o-mini")
	require.NotNil(t, repriced)
	assert.InDelta(t, 0.10, repriced.InputPer1M, 1e-9)

	added := c.ByID("in-house-7b")
	require.NotNil(t, added)
	assert.Equal(t, TierBudget, added.Tier)

	assert.Len(t, c.All(), len(Default().All())+1)
}

func TestLoadRejectsBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models:\n  - model_id: x\n    tier: platinum\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.All(), len(Default().All()))
}
