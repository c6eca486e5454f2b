package entities

// RoutePath is a computed driving path between two points. Path is in
// (latitude, longitude) order regardless of the routing wire format.
//
// A RoutePath is created fresh on every successful routing call and never
// mutated afterwards, so snapshots may share it.
type RoutePath struct {
	Path            []GeoPoint `json:"path"`
	DistanceMeters  float64    `json:"distance_m"`
	DurationSeconds float64    `json:"duration_s"`
}
