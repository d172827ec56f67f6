package lore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSourceType(t *testing.T) {
	st, ok := ParseSourceType(" Oral_Tradition ")
	assert.True(t, ok)
	assert.Equal(t, SourceOralTradition, st)

	st, ok = ParseSourceType("blog")
	assert.False(t, ok)
	assert.Equal(t, SourceUnknown, st)
}

func TestSourceType_RoundTripsAsText(t *testing.T) {
	for _, st := range SourceTypes() {
		b, err := json.Marshal(st)
		require.NoError(t, err)

		var got SourceType
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, st, got, string(b))
	}
}

func TestSourceType_UnrecognisedDecodesToUnknown(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"event_narrative":"x","source_type":"tabloid"}`), &r))
	assert.Equal(t, SourceUnknown, r.SourceType)

	var y struct {
		Source SourceType `yaml:"source"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("source: indigenous\n"), &y))
	assert.Equal(t, SourceIndigenous, y.Source)
}

func TestCredibilityTable_WithOverrides(t *testing.T) {
	base := DefaultCredibilityTable()

	got, err := base.WithOverrides(map[string]float64{"newspaper": 0.65, "unknown": 0.25})
	require.NoError(t, err)
	assert.Equal(t, 0.65, got.Weight(SourceNewspaper))
	assert.Equal(t, 0.25, got.Weight(SourceUnknown))
	assert.Equal(t, 0.7, base.Weight(SourceNewspaper))

	_, err = base.WithOverrides(map[string]float64{"blog": 0.1})
	assert.Error(t, err)
}

func TestRecord_Validate(t *testing.T) {
	ok := &Record{Narrative: "Debris flow", YearsAgo: f(0), DistanceKm: f(1)}
	assert.NoError(t, ok.Validate())

	missing := &Record{}
	assert.ErrorIs(t, missing.Validate(), ErrInvalidRecord)

	negative := &Record{Narrative: "x", YearsAgo: f(-3)}
	err := negative.Validate()
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "years_ago")

	band := &Record{Narrative: "x", ConfidenceBand: f(1.5)}
	assert.ErrorIs(t, band.Validate(), ErrInvalidRecord)
}
