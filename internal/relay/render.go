package relay

import (
	"fmt"
	"strings"

	"roadtrip/internal/model"
)

// Render turns a results envelope into the lines delivered to the
// requester: a route summary first, then a per-category listing. A "none"
// envelope renders only the summary and a short notice.
func Render(env model.Envelope) []string {
	lines := []string{Summary(env.TripRequest)}
	switch env.PlaceType {
	case model.CategoryFuel:
		lines = append(lines, "Gas stations:")
		for i, p := range env.Places {
			lines = append(lines, renderStation(i+1, p))
		}
	case model.CategoryFood:
		lines = append(lines, "Restaurants:")
		for i, p := range env.Places {
			lines = append(lines, renderRestaurant(i+1, p))
		}
	case model.CategoryAttraction:
		lines = append(lines, "Attractions:")
		for i, a := range env.Attractions {
			lines = append(lines, renderAttraction(i+1, a))
		}
	default:
		lines = append(lines, "no stops requested, safe travels")
	}
	return lines
}

// Summary prints the single route summary line. City names keep their
// hyphenated form so multi-word cities read as one token.
func Summary(req model.TripRequest) string {
	return fmt.Sprintf("route summary: from %s to %s - go through %s, total-distance = %dkm",
		hyphenate(req.Origin), hyphenate(req.Destination), req.Summary, req.TotalDistance/1000)
}

func hyphenate(city string) string {
	return strings.ReplaceAll(strings.TrimSpace(city), " ", "-")
}

func renderStation(n int, p model.PlaceRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s, %s, rating %.1f", n, p.Name, p.Address, p.Rating)
	if len(p.WorkingHours) > 0 {
		fmt.Fprintf(&b, ", hours: %s", strings.Join(p.WorkingHours, "; "))
	}
	if svc := stationServices(p); svc != "" {
		fmt.Fprintf(&b, ", services: %s", svc)
	}
	fmt.Fprintf(&b, ", %s", p.URL)
	return b.String()
}

func stationServices(p model.PlaceRecord) string {
	var svc []string
	add := func(flag *bool, name string) {
		if flag != nil && *flag {
			svc = append(svc, name)
		}
	}
	if p.WheelchairAccessible {
		svc = append(svc, "wheelchair accessible")
	}
	add(p.Petrol98, "petrol 98")
	add(p.ElectricCharge, "electric charge")
	add(p.ConvenientStore, "convenient store")
	add(p.CarWash, "car wash")
	return strings.Join(svc, ", ")
}

func renderRestaurant(n int, p model.PlaceRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s, %s, rating %.1f, price level %d", n, p.Name, p.Address, p.Rating, p.PriceLevel)
	if len(p.WorkingHours) > 0 {
		fmt.Fprintf(&b, ", hours: %s", strings.Join(p.WorkingHours, "; "))
	}
	if p.ServesAlcohol {
		b.WriteString(", serves alcohol")
	}
	if p.WheelchairAccessible {
		b.WriteString(", wheelchair accessible")
	}
	fmt.Fprintf(&b, ", %s, %s", p.Website, p.URL)
	return b.String()
}

func renderAttraction(n int, a model.AttractionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s, %s, %s, audience: %s", n, a.Name, a.Address, a.Category, a.AudienceType)
	if a.OpeningHours != "" {
		fmt.Fprintf(&b, ", hours: %s", a.OpeningHours)
	}
	return b.String()
}
