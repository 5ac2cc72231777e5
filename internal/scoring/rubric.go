package scoring

import (
	"strings"

	"github.com/ngmaloney/marine-sessions/internal/models"
)

// Points awarded by each rule. The best case adds up to MaxScore.
const (
	pointsStrongWind = 40
	pointsGoodWind   = 30
	pointsLightWind  = 20

	pointsHighTide       = 30
	pointsSufficientTide = 20

	pointsSeaWind   = 20
	pointsLandWind  = 12
	pointsOtherWind = 8

	pointsAfternoon = 10

	MaxScore = pointsStrongWind + pointsHighTide + pointsSeaWind + pointsAfternoon
)

// Sector is an inclusive range of bearings in degrees.
type Sector struct {
	From float64
	To   float64
}

// Contains reports whether degrees lies in the sector.
func (s Sector) Contains(degrees float64) bool {
	return degrees >= s.From && degrees <= s.To
}

// Rubric holds the thresholds used to accept and score a sample. The values
// are tuned for one site; DefaultRubric returns them.
type Rubric struct {
	MinWindKnots    float64 // below: no session
	GoodWindKnots   float64
	StrongWindKnots float64

	MinTideHeight  float64 // meters; below: no session
	HighTideHeight float64

	SeaWind  Sector // onshore, steady
	LandWind Sector // offshore, gusty

	BonusStartHour int // inclusive
	BonusEndHour   int // inclusive
}

// DefaultRubric returns the thresholds for the Fouras / Châtelaillon area.
func DefaultRubric() Rubric {
	return Rubric{
		MinWindKnots:    12,
		GoodWindKnots:   15,
		StrongWindKnots: 20,
		MinTideHeight:   2.5,
		HighTideHeight:  4.0,
		SeaWind:         Sector{From: 225, To: 315},
		LandWind:        Sector{From: 45, To: 135},
		BonusStartHour:  13,
		BonusEndHour:    17,
	}
}

// Score is the outcome of rating one sample.
type Score struct {
	Points     int
	Conditions string // triggered labels: wind, tide, direction, time slot
}

// KmhToKnots converts a model wind speed to knots.
func KmhToKnots(kmh float64) float64 {
	return kmh / models.KmhPerKnot
}

// Score rates one forecast sample against its nearest tide. ok is false when
// the wind or the water is insufficient; that is routine filtering.
func (r Rubric) Score(windKmh, tideHeight, directionDeg float64, hour int) (s Score, ok bool) {
	knots := KmhToKnots(windKmh)
	if knots < r.MinWindKnots || tideHeight < r.MinTideHeight {
		return Score{}, false
	}

	labels := make([]string, 0, 4)

	switch {
	case knots >= r.StrongWindKnots:
		s.Points += pointsStrongWind
		labels = append(labels, "Vent excellent")
	case knots >= r.GoodWindKnots:
		s.Points += pointsGoodWind
		labels = append(labels, "Vent correct")
	default:
		s.Points += pointsLightWind
		labels = append(labels, "Vent moyen")
	}

	if tideHeight >= r.HighTideHeight {
		s.Points += pointsHighTide
		labels = append(labels, "Pleine eau")
	} else {
		s.Points += pointsSufficientTide
		labels = append(labels, "Marée suffisante")
	}

	dir := normalizeDegrees(directionDeg)
	switch {
	case r.SeaWind.Contains(dir):
		s.Points += pointsSeaWind
		labels = append(labels, "Vent à dominante Ouest")
	case r.LandWind.Contains(dir):
		s.Points += pointsLandWind
		labels = append(labels, "Vent à dominante Est")
	default:
		s.Points += pointsOtherWind
		labels = append(labels, "Direction correcte")
	}

	if hour >= r.BonusStartHour && hour <= r.BonusEndHour {
		s.Points += pointsAfternoon
		labels = append(labels, "Bon créneau")
	}

	s.Conditions = strings.Join(labels, " + ")
	return s, true
}
