// internal/ranking/geo_test.go
package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	points := [][2]float64{
		{12.9716, 77.5946},
		{19.0760, 72.8777},
		{-33.8688, 151.2093},
		{51.5074, -0.1278},
		{0, 0},
	}

	for _, a := range points {
		assert.InDelta(t, 0, Distance(a[0], a[1], a[0], a[1]), 1e-9)
		for _, b := range points {
			ab := Distance(a[0], a[1], b[0], b[1])
			ba := Distance(b[0], b[1], a[0], a[1])
			assert.InDelta(t, ab, ba, 1e-9)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of longitude on the equator.
	assert.InDelta(t, 111.195, Distance(0, 0, 0, 1), 0.01)
	// Antipodes stay finite thanks to the clamp.
	assert.InDelta(t, 20015.09, Distance(0, 0, 0, 180), 0.1)
	// Bengaluru to Mumbai.
	assert.InDelta(t, 845, Distance(12.9716, 77.5946, 19.0760, 72.8777), 10)
}
