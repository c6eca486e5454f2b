package entities

// TripErrorKind distinguishes the two user-visible routing failures. A
// no_route error is terminal for the input pair; a network error can be
// retried by changing input.
type TripErrorKind string

const (
	TripErrorNone    TripErrorKind = ""
	TripErrorNoRoute TripErrorKind = "no_route"
	TripErrorNetwork TripErrorKind = "network"
)

// User-facing messages for each error kind.
const (
	MsgNoRoute      = "Unable to find a route between these locations"
	MsgRouteFailure = "Error calculating route. Please try again."
)

// TripState is the aggregate owned by the Trip Controller. Readers only ever
// see copies returned by the controller.
//
// Go Learning Note — Pointers as Optional Values:
// Origin, Destination and Route are pointers so that "absent" (nil) is
// distinguishable from a zero value. A zero GeoPoint (0,0) is a real place in
// the Gulf of Guinea, so it cannot double as "not set".
type TripState struct {
	Revision    uint64        `json:"revision"`
	Origin      *Place        `json:"origin,omitempty"`
	Destination *Place        `json:"destination,omitempty"`
	Route       *RoutePath    `json:"route,omitempty"`
	Quotes      []FareQuote   `json:"quotes"`
	Loading     bool          `json:"loading"`
	Error       string        `json:"error,omitempty"`
	ErrorKind   TripErrorKind `json:"error_kind,omitempty"`
}

// Clone returns a copy that shares no mutable memory with s. Places and
// routes are immutable once stored, so copying the pointers is enough; the
// quote slice is copied because it is the only field rebuilt in place.
func (s TripState) Clone() TripState {
	out := s
	out.Quotes = make([]FareQuote, len(s.Quotes))
	copy(out.Quotes, s.Quotes)
	return out
}
