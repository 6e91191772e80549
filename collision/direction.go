package collision

import (
	"fmt"
	"strings"

	"github.com/milk9111/gridstep/common"
)

// Direction is one side of an axis-aligned box.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{Up: "up", Down: "down", Left: "left", Right: "right"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Direction) IsHorizontal() bool {
	return d == Left || d == Right
}

// directionOf maps a signed movement on one axis to the side that leads it.
// Screen space: y grows downward.
func directionOf(horizontal bool, amount common.Fixed) Direction {
	switch {
	case horizontal && amount < 0:
		return Left
	case horizontal:
		return Right
	case amount < 0:
		return Up
	default:
		return Down
	}
}

// ParseDirection accepts the lower-case direction names.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("collision: unknown direction %q", s)
}

// DirectionSet declares which sides of a body or tile take part in blocking.
type DirectionSet uint8

const (
	NoDirections  DirectionSet = 0
	AllDirections DirectionSet = 1<<Up | 1<<Down | 1<<Left | 1<<Right
)

// Directions builds a set from individual sides.
func Directions(ds ...Direction) DirectionSet {
	var s DirectionSet
	for _, d := range ds {
		s = s.With(d)
	}
	return s
}

func (s DirectionSet) Has(d Direction) bool             { return s&(1<<d) != 0 }
func (s DirectionSet) With(d Direction) DirectionSet    { return s | 1<<d }
func (s DirectionSet) Without(d Direction) DirectionSet { return s &^ (1 << d) }

func (s DirectionSet) String() string {
	switch s {
	case NoDirections:
		return "none"
	case AllDirections:
		return "all"
	}
	var parts []string
	for d := Up; d <= Right; d++ {
		if s.Has(d) {
			parts = append(parts, d.String())
		}
	}
	return strings.Join(parts, "|")
}

// ParseDirectionSet accepts direction names plus the shorthands "all" and
// "none". An empty list means all sides.
func ParseDirectionSet(names []string) (DirectionSet, error) {
	if len(names) == 0 {
		return AllDirections, nil
	}
	var s DirectionSet
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "all":
			s = AllDirections
			continue
		case "none":
			continue
		}
		d, err := ParseDirection(name)
		if err != nil {
			return 0, err
		}
		s = s.With(d)
	}
	return s, nil
}
