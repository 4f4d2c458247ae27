package models

import (
	"fmt"
	"strings"
)

// Category identifies one of the five competitive events.
type Category string

const (
	MensSingles   Category = "MS"
	WomensSingles Category = "WS"
	MensDoubles   Category = "MD"
	WomensDoubles Category = "WD"
	MixedDoubles  Category = "XD"
)

// ParseCategory normalizes and validates a category code.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case MensSingles, WomensSingles, MensDoubles, WomensDoubles, MixedDoubles:
		return c, nil
	}
	return "", fmt.Errorf("invalid category %q (expected MS, WS, MD, WD or XD)", s)
}

// IsSingles reports whether the category is a 1-vs-1 event. Elo rankings
// and matchup predictions are only defined for singles.
func (c Category) IsSingles() bool {
	return c == MensSingles || c == WomensSingles
}

// IsDoubles reports whether entries in this category name two players.
func (c Category) IsDoubles() bool {
	return c == MensDoubles || c == WomensDoubles || c == MixedDoubles
}
