package entities

// FareQuote is one provider's price and arrival estimate for a specific trip.
// Quotes are derived data: the whole list is recomputed on every routing
// result and replaced at once, never patched.
type FareQuote struct {
	Provider   ProviderProfile `json:"provider"`
	Fare       int             `json:"fare"`
	ETAMinutes int             `json:"eta"`
	Surge      *float64        `json:"surge,omitempty"`
}
