package validation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/georisk/internal/validation"
)

type sample struct {
	Slope     float64  `json:"slope_deg" validate:"gte=0,lte=90"`
	Curvature float64  `json:"curvature" validate:"finite"`
	Distance  *float64 `json:"distance_km" validate:"omitempty,gte=0"`
	Kind      string   `json:"kind" validate:"oneof=a b"`
}

func TestDescribeTag(t *testing.T) {
	cases := map[string]string{
		"gte=0,lte=90":       "[0, 90]",
		"gt=0,lt=1":          "(0, 1)",
		"omitempty,gte=0":    ">= 0",
		"lte=5":              "<= 5",
		"finite":             "a finite number",
		"gte=0,lte=1,finite": "[0, 1], a finite number",
		"oneof=a b":          "one of a|b",
	}
	for tag, want := range cases {
		assert.Equal(t, want, validation.DescribeTag(tag), tag)
	}
}

func TestCheck_Valid(t *testing.T) {
	v, err := validation.Check(sample{Slope: 30, Kind: "a"})
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestCheck_ReportsJSONNameAndRange(t *testing.T) {
	d := -1.0
	v, err := validation.Check(&sample{Slope: 95, Curvature: math.NaN(), Distance: &d, Kind: "a"})
	require.NoError(t, err)
	require.Len(t, v, 3)

	assert.Equal(t, "slope_deg", v[0].Field)
	assert.Equal(t, "[0, 90]", v[0].Range)
	assert.Equal(t, 95.0, v[0].Value)

	assert.Equal(t, "curvature", v[1].Field)
	assert.Equal(t, "a finite number", v[1].Range)

	assert.Equal(t, "distance_km", v[2].Field)
	assert.Equal(t, ">= 0", v[2].Range)
}

func TestCheck_NilPointerSkippedWithOmitempty(t *testing.T) {
	v, err := validation.Check(sample{Slope: 10, Kind: "b"})
	require.NoError(t, err)
	assert.Empty(t, v)
}
