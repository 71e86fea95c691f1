package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 0.074914 degrees of latitude is 8330 m on a 6371 km sphere.
const lat8330m = 0.074914

func TestDistance_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Distance(30.0444, 31.2357, 30.0444, 31.2357))
}

func TestDistance_OneDegreeLatitude(t *testing.T) {
	d := Distance(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 1)
}

func TestDistance_KnownSeparation(t *testing.T) {
	d := Distance(0, 0, lat8330m, 0)
	assert.InDelta(t, 8330, d, 1)
}

func TestDistance_Symmetry(t *testing.T) {
	a := Distance(30.05, 31.25, 30.10, 31.30)
	b := Distance(30.10, 31.30, 30.05, 31.25)
	assert.InDelta(t, a, b, 1e-9)
}

func TestEstimateETA_DefaultUrbanSpeed(t *testing.T) {
	// 8330 m / 8.33 m/s = 1000 s, which rounds to 17 minutes.
	eta := EstimateETA(0, 0, lat8330m, 0, 0)
	assert.Equal(t, 17, eta)
}

func TestEstimateETA_ReportedSpeed(t *testing.T) {
	// 8330 m at 13.8833 m/s is 600 s, exactly 10 minutes.
	eta := EstimateETA(0, 0, lat8330m, 0, 13.8833)
	assert.Equal(t, 10, eta)
}

func TestEstimateETA_NegativeSpeedFallsBack(t *testing.T) {
	assert.Equal(t,
		EstimateETA(0, 0, lat8330m, 0, 0),
		EstimateETA(0, 0, lat8330m, 0, -4))
}

func TestEstimateETA_ZeroDistance(t *testing.T) {
	assert.Equal(t, 0, EstimateETA(30.05, 31.25, 30.05, 31.25, 0))
}
