package domain

import (
	"fmt"
	"math"
)

// ComputeIndex returns the temperature-humidity index for a daily mean air
// temperature in °C and relative humidity in percent:
//
//	THI = 0.8×Ta + RH×(Ta−14.3)/100 + 46.3
//
// Inputs are assumed numeric and pre-validated by the retrieval boundary.
func ComputeIndex(airTemp, relHumidity float64) float64 {
	return 0.8*airTemp + relHumidity*(airTemp-14.3)/100.0 + 46.3
}

// Category is a dairy-cattle heat-stress risk band, ordered by increasing THI.
type Category int

const (
	CategoryNormal Category = iota
	CategoryAlert
	CategoryDanger
	CategoryEmergency
)

var categoryNames = [...]string{"normal", "alert", "danger", "emergency"}

func (c Category) String() string {
	if c < CategoryNormal || c > CategoryEmergency {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText encodes the category as its lowercase name, for JSON bodies
// and JSON map keys.
func (c Category) MarshalText() ([]byte, error) {
	if c < CategoryNormal || c > CategoryEmergency {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText decodes a lowercase category name.
func (c *Category) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if string(text) == name {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// band couples a category with its inclusive upper THI bound and the
// presentation values every output shares. Chart bars, the PDF report, and
// published events all read this one table; that is what keeps colors and
// advisory texts identical across outputs.
type band struct {
	upper          float64
	category       Category
	color          string
	recommendation string
}

var bands = [...]band{
	{70, CategoryNormal, "#2E7D32",
		"Comfort range: keep clean water and shade available. Normal routine."},
	{78, CategoryAlert, "#F9A825",
		"Attention: reinforce water and shade. Avoid handling animals during the hottest hours."},
	{82, CategoryDanger, "#EF6C00",
		"High risk: use ventilation and/or sprinkling where available. Move handling to early morning or late afternoon."},
	{math.Inf(1), CategoryEmergency, "#C62828",
		"Emergency, act now: move animals to shade with plenty of water and active cooling (fans, sprinklers). Avoid any handling."},
}

// Classify maps a THI value to its risk band. Boundaries are inclusive on
// the lower band: 70 is normal, 78 is alert, 82 is danger.
func Classify(index float64) Category {
	for _, b := range bands {
		if index <= b.upper {
			return b.category
		}
	}
	return CategoryEmergency
}

// ColorFor returns the fixed hex color for a band, e.g. "#2E7D32".
func ColorFor(c Category) string {
	for _, b := range bands {
		if b.category == c {
			return b.color
		}
	}
	return bands[len(bands)-1].color
}

// RecommendationFor returns the fixed advisory text for a band.
func RecommendationFor(c Category) string {
	for _, b := range bands {
		if b.category == c {
			return b.recommendation
		}
	}
	return bands[len(bands)-1].recommendation
}
