package entities

// VehicleClass groups providers that share a rate card.
type VehicleClass string

const (
	VehicleTwoWheeler   VehicleClass = "two_wheeler"
	VehicleThreeWheeler VehicleClass = "three_wheeler"
	VehicleFourWheeler  VehicleClass = "four_wheeler"
)

// NoBookingLink marks a provider without a live booking target. Callers must
// not try to navigate to it.
const NoBookingLink = "#"

// ProviderProfile is one entry of the static provider catalog. Profiles are
// defined at process start and never edited at runtime.
type ProviderProfile struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Logo         string       `json:"logo"`
	VehicleClass VehicleClass `json:"vehicle_class"`
	Color        string       `json:"color"`
	BookingURL   string       `json:"booking_url"`
}

// Bookable reports whether the profile carries a real booking link.
func (p ProviderProfile) Bookable() bool {
	return p.BookingURL != "" && p.BookingURL != NoBookingLink
}

// Catalog is the read-only list of providers quoted for every trip. Order
// matters: it breaks ties when quotes are sorted by fare.
type Catalog []ProviderProfile

// Find returns the profile with the given id.
func (c Catalog) Find(id string) (ProviderProfile, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderProfile{}, false
}

// DefaultCatalog returns the providers compared by the app.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "uber", Name: "Uber", Logo: "🚗", VehicleClass: VehicleFourWheeler, Color: "#000000", BookingURL: "https://m.uber.com/"},
		{ID: "ola", Name: "Ola", Logo: "🚙", VehicleClass: VehicleFourWheeler, Color: "#00c851", BookingURL: "https://book.olacabs.com/"},
		{ID: "rapido", Name: "Rapido", Logo: "🏍️", VehicleClass: VehicleTwoWheeler, Color: "#ffd700", BookingURL: "https://rapido.bike/"},
		{ID: "namma-yatri", Name: "Namma Yatri", Logo: "🚗", VehicleClass: VehicleFourWheeler, Color: "#ff6b35", BookingURL: "https://nammayatri.in/"},
		{ID: "auto", Name: "Auto Rickshaw", Logo: "🛺", VehicleClass: VehicleThreeWheeler, Color: "#28a745", BookingURL: NoBookingLink},
	}
}
