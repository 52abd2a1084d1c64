package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	var loc = map[string][2]float64{
		"berlin": {52.5200, 13.4050},
		"madrid": {40.4168, -3.7038},
		"tokyo":  {35.6762, 139.6503},
		"osaka":  {34.6937, 135.5023},
	}

	assert.InDelta(t, 1869.0, Distance(loc["berlin"][0], loc["berlin"][1], loc["madrid"][0], loc["madrid"][1]), 10.0)
	assert.InDelta(t, 392.5, Distance(loc["tokyo"][0], loc["tokyo"][1], loc["osaka"][0], loc["osaka"][1]), 8.0)
	assert.Equal(t, 0.0, Distance(loc["berlin"][0], loc["berlin"][1], loc["berlin"][0], loc["berlin"][1]))
}

func TestWalkMinutes(t *testing.T) {
	assert.Equal(t, 0, WalkMinutes(0, DefaultWalkSpeedMetersPerMin))
	assert.Equal(t, 1, WalkMinutes(0.01, DefaultWalkSpeedMetersPerMin))
	assert.Equal(t, 13, WalkMinutes(1, DefaultWalkSpeedMetersPerMin))
	assert.Equal(t, 25, WalkMinutes(2, DefaultWalkSpeedMetersPerMin))
	// Falls back to the default speed on a non-positive input.
	assert.Equal(t, 13, WalkMinutes(1, 0))
}
