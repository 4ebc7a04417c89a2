package world

import (
	"fmt"
	"strings"
)

// Age is a traversal context. AgeChild and AgeAdult are the two real ages;
// AgeBoth and AgeAny combine them for reachability queries.
type Age uint8

const (
	AgeAny Age = iota
	AgeChild
	AgeAdult
	AgeBoth
)

// Ages lists the two real ages in search order.
var Ages = [2]Age{AgeChild, AgeAdult}

func (a Age) String() string {
	switch a {
	case AgeChild:
		return "child"
	case AgeAdult:
		return "adult"
	case AgeBoth:
		return "both"
	}
	return "either"
}

// ParseAge parses child, adult, both, either or any.
func ParseAge(s string) (Age, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "child":
		return AgeChild, nil
	case "adult":
		return AgeAdult, nil
	case "both":
		return AgeBoth, nil
	case "either", "any", "":
		return AgeAny, nil
	}
	return AgeAny, fmt.Errorf("unknown age %q", s)
}

// TimeOfDay is a bitmask lattice: None < {Day, Dampe} < All.
type TimeOfDay uint8

const (
	TODNone  TimeOfDay = 0
	TODDay   TimeOfDay = 1
	TODDampe TimeOfDay = 2
	TODAll   TimeOfDay = TODDay | TODDampe
)

func (t TimeOfDay) String() string {
	switch t {
	case TODNone:
		return "NONE"
	case TODDay:
		return "DAY"
	case TODDampe:
		return "DAMPE"
	case TODAll:
		return "ALL"
	}
	return fmt.Sprintf("TimeOfDay(%d)", uint8(t))
}

// Has reports whether every bit of other is set.
func (t TimeOfDay) Has(other TimeOfDay) bool {
	return t&other == other
}

// ParseTimeOfDay accepts the names used by region files (NONE, DAY, DAMPE, ALL)
// in any case.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE", "":
		return TODNone, nil
	case "DAY":
		return TODDay, nil
	case "DAMPE":
		return TODDampe, nil
	case "ALL":
		return TODAll, nil
	}
	return TODNone, fmt.Errorf("unknown time of day %q", s)
}

// Arena indices. -1 means none.
type (
	RegionID   int32
	EntranceID int32
	LocationID int32
)

const (
	NoRegion   RegionID   = -1
	NoEntrance EntranceID = -1
	NoLocation LocationID = -1
)

// Valid reports whether the id refers to an arena slot.
func (id RegionID) Valid() bool   { return id >= 0 }
func (id EntranceID) Valid() bool { return id >= 0 }
func (id LocationID) Valid() bool { return id >= 0 }

// RegionRef addresses a region across worlds.
type RegionRef struct {
	World int
	ID    RegionID
}

// EntranceRef addresses an entrance across worlds.
type EntranceRef struct {
	World int
	ID    EntranceID
}

// LocationRef addresses a location across worlds.
type LocationRef struct {
	World int
	ID    LocationID
}

// SpotKind tells which arena a Spot points into.
type SpotKind uint8

const (
	SpotNone SpotKind = iota
	SpotEntrance
	SpotLocation
)

// Spot is the entrance or location whose rule is being compiled or evaluated.
type Spot struct {
	Kind SpotKind
	ID   int32
}

// NoSpot is the zero Spot.
var NoSpot = Spot{Kind: SpotNone, ID: -1}

// EntranceSpot returns the Spot for an entrance.
func EntranceSpot(id EntranceID) Spot { return Spot{Kind: SpotEntrance, ID: int32(id)} }

// LocationSpot returns the Spot for a location.
func LocationSpot(id LocationID) Spot { return Spot{Kind: SpotLocation, ID: int32(id)} }

// Context is the runtime argument bundle every predicate receives.
// TOD is TODNone when the caller does not force a time of day.
type Context struct {
	Age  Age
	Spot Spot
	TOD  TimeOfDay
}
