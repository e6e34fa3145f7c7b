package cli

import (
	"context"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/services"
)

// mockAggregation is a scripted aggregation service for command tests.
type mockAggregation struct {
	data     *domain.AggregatedData
	err      error
	quick    []domain.EvidenceItem
	statuses []domain.SourceStatus
}

func (m *mockAggregation) Aggregate(context.Context, domain.Topic, domain.AggregateOptions) (*domain.AggregatedData, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.data != nil {
		return m.data, nil
	}
	return &domain.AggregatedData{}, nil
}

func (m *mockAggregation) QuickSearch(context.Context, string) []domain.EvidenceItem {
	return m.quick
}

func (m *mockAggregation) SourceStatus(context.Context) []domain.SourceStatus {
	return m.statuses
}

// mockConfigStore is a map-backed config store for command tests.
type mockConfigStore struct {
	values map[string]any
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	if v, ok := m.values[key].([]string); ok {
		return v
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.values == nil {
		m.values = map[string]any{}
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/test-config.toml"
}

// setupTestServices installs mock services and returns a cleanup
// function restoring the previous wiring.
func setupTestServices() func() {
	prevAgg := aggregationService
	prevScore := scoringService

	aggregationService = &mockAggregation{
		quick: []domain.EvidenceItem{
			{ID: "hackernews-1", Title: "Test result", Score: 42, URL: "https://example.com/1"},
		},
		statuses: []domain.SourceStatus{
			{Provider: "hackernews", Configured: true, Available: true, RateLimit: "test"},
		},
	}
	scoringService = services.NewScoringService()

	return func() {
		aggregationService = prevAgg
		scoringService = prevScore
	}
}
