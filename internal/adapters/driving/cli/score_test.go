package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
)

func writeIdeasFile(t *testing.T, ideas []domain.Idea) string {
	t.Helper()
	data, err := json.Marshal(ideas)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ideas.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestScoreCmd_RanksIdeas(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeIdeasFile(t, []domain.Idea{
		{ID: "a", Title: "Weak idea", PotentialScore: 20, FrictionSeverity: domain.FrictionMinorBug},
		{ID: "b", Title: "Strong idea", PotentialScore: 85, FrictionSeverity: domain.FrictionCriticalPain, RevenueVerified: true},
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"score", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Strong idea")
	assert.Contains(t, out, "Weak idea")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Strong idea")), bytes.Index(buf.Bytes(), []byte("Weak idea")))
}

func TestScoreCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeIdeasFile(t, []domain.Idea{
		{ID: "a", Title: "Only idea", PotentialScore: 50},
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"score", "--json", path})
	defer func() {
		rootCmd.SetArgs(nil)
		scoreJSON = false
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	var ranked []domain.Idea
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "Only idea", ranked[0].Title)
	assert.NotZero(t, ranked[0].PotentialScore)
}

func TestScoreCmd_RejectsMissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"score", filepath.Join(t.TempDir(), "absent.json")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	assert.Error(t, err)
}

func TestResolveWeights_AppliesConfigOverrides(t *testing.T) {
	prev := configStore
	configStore = &mockConfigStore{values: map[string]any{
		driven.KeyWeightAccessibility: 0.5,
		driven.KeyWeightMarketSize:    0.1,
	}}
	defer func() { configStore = prev }()

	weights := resolveWeights("solo")
	preset := domain.PresetWeights(domain.ProfileSolo)

	assert.Equal(t, 0.5, weights.Accessibility)
	assert.Equal(t, 0.1, weights.MarketSize)

	// Dimensions without overrides keep their preset values.
	assert.Equal(t, preset.PaymentPotential, weights.PaymentPotential)
	assert.Equal(t, preset.CompetitionLevel, weights.CompetitionLevel)
	assert.Equal(t, preset.ImplementationSpeed, weights.ImplementationSpeed)
}

func TestResolveWeights_NoConfigFallsBackToPreset(t *testing.T) {
	prev := configStore
	configStore = nil
	defer func() { configStore = prev }()

	assert.Equal(t, domain.PresetWeights(domain.ProfileAgency), resolveWeights("agency"))
}

func TestScoreCmd_HasProfileFlag(t *testing.T) {
	flag := scoreCmd.Flags().Lookup("profile")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "solo", flag.DefValue)
}
