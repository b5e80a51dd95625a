package model

import "strconv"

// Category is a requested stop type along a trip.
type Category string

const (
	CategoryFuel       Category = "gas_station"
	CategoryFood       Category = "restaurant"
	CategoryAttraction Category = "attraction"
	// CategoryNone marks a direct trip with no stops requested.
	CategoryNone Category = "none"
)

// CategorySet is the closed set of stop categories a user asked for.
// The zero value means a direct route with no stops.
type CategorySet struct {
	Fuel        bool `json:"gas-stations"`
	Food        bool `json:"restaurants"`
	Attractions bool `json:"attractions"`
}

func (c CategorySet) Empty() bool { return !c.Fuel && !c.Food && !c.Attractions }

// GeoPoint is a coordinate along a route or a place location.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Key returns a stable map key for coordinate dedup.
func (g GeoPoint) Key() string {
	return strconv.FormatFloat(g.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(g.Lng, 'f', 6, 64)
}

// TripRequest is the immutable trip assembled by the conversation layer and
// published to the intake topic once the route has been resolved.
type TripRequest struct {
	UserID        int64       `json:"user_id"`
	Email         string      `json:"email,omitempty"`
	CreatedAt     string      `json:"createdAt"`
	RouteID       string      `json:"route_id"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	Departure     string      `json:"departure"`
	DayOfWeek     string      `json:"day_of_week,omitempty"`
	Categories    CategorySet `json:"categories"`
	Summary       string      `json:"summary,omitempty"`
	TotalDistance int         `json:"total-distance,omitempty"`
	Waypoints     []GeoPoint  `json:"waypoints,omitempty"`
}

// CachedRoute is a resolved route persisted by (origin, destination).
type CachedRoute struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	Summary       string     `json:"summary"`
	TotalDistance int        `json:"total-distance"`
	Waypoints     []GeoPoint `json:"waypoints"`
}

// PlaceRecord is a fuel or food stop. PlaceID is the dedup key: a place is
// never fetched from the provider twice after first persistence.
type PlaceRecord struct {
	PlaceID   string  `json:"place_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Rating    float64 `json:"rating"`
	Vicinity  string  `json:"vicinity"`
	URL       string  `json:"url"`
	Address   string  `json:"address,omitempty"`

	WorkingHours []string `json:"working_hours,omitempty"`

	// Food-only detail fields.
	ServesAlcohol        bool   `json:"serves_alcohol,omitempty"`
	WheelchairAccessible bool   `json:"wheelchair_accessible,omitempty"`
	PriceLevel           int    `json:"price_level,omitempty"`
	Website              string `json:"website,omitempty"`

	// Fuel fields, sparse from the search provider; the enrichment stage
	// fills them from the static station reference.
	Petrol98        *bool `json:"petrol98,omitempty"`
	ElectricCharge  *bool `json:"electric_charge,omitempty"`
	ConvenientStore *bool `json:"convenient_store,omitempty"`
	CarWash         *bool `json:"car_wash,omitempty"`
}

// AttractionRecord is an attraction stop. Dedup key is the coordinate pair;
// Anchor is the waypoint whose search produced it, kept so future searches
// from the same waypoint hit cache instead of the provider.
type AttractionRecord struct {
	RouteID      string   `json:"route_id,omitempty"`
	Name         string   `json:"attraction_name"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Anchor       GeoPoint `json:"anchor"`
	Address      string   `json:"address"`
	Category     string   `json:"category"`
	AudienceType string   `json:"audience_type"`
	Popularity   float64  `json:"popularity,omitempty"`
	OpeningHours string   `json:"opening_hours"`
}

func (a AttractionRecord) Coordinate() GeoPoint {
	return GeoPoint{Lat: a.Latitude, Lng: a.Longitude}
}

// StationReference is a row of the offline-seeded gas station table used by
// the enrichment stage to fill fields the search provider leaves empty.
type StationReference struct {
	Name            string   `json:"name"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	WorkingHours    []string `json:"working_hours"`
	Petrol98        *bool    `json:"petrol98"`
	ElectricCharge  *bool    `json:"electric_charge"`
	ConvenientStore *bool    `json:"convenient_store"`
	CarWash         *bool    `json:"car_wash"`
}

// Envelope is a TripRequest forwarded down the pipeline with the places
// collected for one category. Places and Attractions are mutually exclusive;
// which one is set follows PlaceType.
type Envelope struct {
	TripRequest
	PlaceType   Category           `json:"place_type"`
	Places      []PlaceRecord      `json:"places,omitempty"`
	Attractions []AttractionRecord `json:"attraction_places,omitempty"`
}
