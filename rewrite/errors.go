package rewrite

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrDatasetUnavailable is returned when the Schema Oracle/dataset
	// cannot be reached at all (not the same as an empty probe result,
	// which §7 treats as "no constraint").
	ErrDatasetUnavailable = errors.NewKind("dataset unavailable: %s")
)
