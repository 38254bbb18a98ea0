package domain

// ClickPoint is a single user-selected map coordinate in degrees.
type ClickPoint struct {
	Lat float64
	Lon float64
}

// Resolution is the outcome of resolving a click to a building. It doubles as
// the caller-owned "current selection": the service never stores it, clients
// pass Index back for derivation and insight calls.
type Resolution struct {
	Index          int
	DistanceMeters float64
	Building       Building
}

// Contained reports whether the click fell inside the building footprint.
func (r Resolution) Contained() bool { return r.DistanceMeters == 0 }
