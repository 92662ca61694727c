package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFeatures_UniformImage(t *testing.T) {
	cases := []struct {
		r, g, b uint8
	}{
		{200, 80, 80},
		{80, 80, 150},
		{120, 120, 120},
		{0, 0, 0},
		{255, 255, 255},
	}

	for _, c := range cases {
		f := ExtractFeatures(uniformRaw(c.r, c.g, c.b))

		assert.Equal(t, float64(c.r), f.AvgRed)
		assert.Equal(t, float64(c.g), f.AvgGreen)
		assert.Equal(t, float64(c.b), f.AvgBlue)
		assert.Zero(t, f.RedVariance)
		assert.Equal(t, float64(c.r)-(float64(c.g)+float64(c.b))/2, f.RedDominance)
	}
}

func TestExtractFeatures_PopulationVariance(t *testing.T) {
	raw := RawImage{
		Width:  2,
		Height: 2,
		Pix: []uint8{
			0, 10, 20,
			100, 10, 20,
			0, 10, 20,
			100, 10, 20,
		},
	}

	f := ExtractFeatures(raw)

	assert.Equal(t, 50.0, f.AvgRed)
	// Sample variance would be 3333.33.
	assert.InDelta(t, 2500.0, f.RedVariance, 1e-9)
	assert.Equal(t, 35.0, f.RedDominance)
}

func TestExtractFeatures_ZeroPixels(t *testing.T) {
	assert.Equal(t, ColorFeatures{}, ExtractFeatures(RawImage{}))
	assert.Equal(t, ColorFeatures{}, ExtractFeatures(RawImage{Width: 10, Height: 10}))
}

func TestExtractFeatures_ScenarioValues(t *testing.T) {
	red := ExtractFeatures(uniformRaw(200, 80, 80))
	assert.Equal(t, 120.0, red.RedDominance)

	blue := ExtractFeatures(uniformRaw(80, 80, 150))
	assert.Equal(t, -35.0, blue.RedDominance)

	gray := ExtractFeatures(uniformRaw(120, 120, 120))
	assert.Zero(t, gray.RedDominance)
}
