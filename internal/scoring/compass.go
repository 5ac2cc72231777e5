package scoring

import "math"

// compassPoints uses the French convention: O is Ouest (west).
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSO", "SO", "OSO", "O", "ONO", "NO", "NNO",
}

// DirectionLabel returns the nearest of the 16 compass points for a bearing
// in degrees.
func DirectionLabel(degrees float64) string {
	idx := int(math.Round(normalizeDegrees(degrees)/22.5)) % len(compassPoints)
	return compassPoints[idx]
}

// normalizeDegrees maps any bearing into [0,360).
func normalizeDegrees(degrees float64) float64 {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	return d
}
