package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEvidenceID tests source-namespaced identifier construction
func TestEvidenceID(t *testing.T) {
	assert.Equal(t, "reddit-t3_abc123", EvidenceID(SourceReddit, "t3_abc123"))
	assert.Equal(t, "hackernews-99", EvidenceID(SourceHackerNews, "99"))
}

// TestTruncateContent_Short tests that short content passes through untouched
func TestTruncateContent_Short(t *testing.T) {
	s := "my spreadsheet keeps breaking"
	assert.Equal(t, s, TruncateContent(s))
}

// TestTruncateContent_Long tests bounded content with ellipsis
func TestTruncateContent_Long(t *testing.T) {
	long := strings.Repeat("x", MaxContentLength+200)
	got := TruncateContent(long)
	assert.Len(t, []rune(got), MaxContentLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

// TestTruncateContent_Multibyte tests rune-safe truncation
func TestTruncateContent_Multibyte(t *testing.T) {
	long := strings.Repeat("ñ", MaxContentLength+1)
	got := TruncateContent(long)
	assert.Len(t, []rune(got), MaxContentLength+3)
	assert.NotContains(t, got, "�")
}

// TestDedupeAndSort_RemovesDuplicates tests first-seen wins
func TestDedupeAndSort_RemovesDuplicates(t *testing.T) {
	items := []EvidenceItem{
		{ID: "reddit-1", Score: 5, Author: "first"},
		{ID: "reddit-2", Score: 9},
		{ID: "reddit-1", Score: 100, Author: "second"},
	}

	got := DedupeAndSort(items)

	assert.Len(t, got, 2)
	assert.Equal(t, "reddit-2", got[0].ID)
	assert.Equal(t, "reddit-1", got[1].ID)
	// First-seen instance survives, not the higher-scored copy.
	assert.Equal(t, "first", got[1].Author)
}

// TestDedupeAndSort_Deterministic tests that equal scores tiebreak on ID
func TestDedupeAndSort_Deterministic(t *testing.T) {
	a := []EvidenceItem{{ID: "b", Score: 3}, {ID: "a", Score: 3}, {ID: "c", Score: 7}}
	b := []EvidenceItem{{ID: "c", Score: 7}, {ID: "a", Score: 3}, {ID: "b", Score: 3}}

	got1 := DedupeAndSort(a)
	got2 := DedupeAndSort(b)

	assert.Equal(t, got1, got2)
	assert.Equal(t, "c", got1[0].ID)
	assert.Equal(t, "a", got1[1].ID)
	assert.Equal(t, "b", got1[2].ID)
}

// TestDedupeAndSort_Empty tests empty input
func TestDedupeAndSort_Empty(t *testing.T) {
	got := DedupeAndSort(nil)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

// TestFrictionSeverity_Valid tests severity validation
func TestFrictionSeverity_Valid(t *testing.T) {
	assert.True(t, FrictionCriticalPain.Valid())
	assert.True(t, FrictionWorkflowGap.Valid())
	assert.True(t, FrictionMinorBug.Valid())
	assert.False(t, FrictionSeverity("").Valid())
	assert.False(t, FrictionSeverity("catastrophic").Valid())
}

// TestPresetWeights_SumToOne tests every preset is normalised
func TestPresetWeights_SumToOne(t *testing.T) {
	for _, profile := range []DeveloperProfile{ProfileSolo, ProfileSmallTeam, ProfileAgency} {
		w := PresetWeights(profile)
		sum := w.Accessibility + w.PaymentPotential + w.MarketSize + w.CompetitionLevel + w.ImplementationSpeed
		assert.InDelta(t, 1.0, sum, 1e-9, "profile %s", profile)
	}
}

// TestPresetWeights_SoloMaximisesAccessibility tests the solo emphasis
func TestPresetWeights_SoloMaximisesAccessibility(t *testing.T) {
	solo := PresetWeights(ProfileSolo)
	assert.Greater(t, solo.Accessibility, PresetWeights(ProfileSmallTeam).Accessibility)
	assert.Greater(t, solo.Accessibility, PresetWeights(ProfileAgency).Accessibility)
}

// TestPresetWeights_UnknownFallsBackToSolo tests the fallback
func TestPresetWeights_UnknownFallsBackToSolo(t *testing.T) {
	assert.Equal(t, PresetWeights(ProfileSolo), PresetWeights(DeveloperProfile("cooperative")))
}
