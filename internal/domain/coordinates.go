package domain

import "strconv"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// String formats the coordinates as "lon,lat", the order routing services expect.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// PairKey identifies an ordered origin->destination pair by coordinates.
// Points sharing coordinates share estimates.
type PairKey struct {
	From Coordinates
	To   Coordinates
}

func (k PairKey) String() string { return k.From.String() + "-" + k.To.String() }

// Same reports whether origin and destination are the same coordinates.
func (k PairKey) Same() bool { return k.From == k.To }
