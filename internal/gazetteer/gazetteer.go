// Package gazetteer validates user-entered city names against a known set.
package gazetteer

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"strings"
)

//go:embed il-cities.csv
var citiesCSV []byte

// Gazetteer holds normalized city names. Hyphenated names are stored both
// joined and split so "Tel Aviv-Yafo" also matches "tel aviv yafo", "tel
// aviv" and "yafo".
type Gazetteer struct {
	cities map[string]struct{}
}

// Load parses the embedded city list.
func Load() (*Gazetteer, error) {
	return parse(citiesCSV)
}

func parse(data []byte) (*Gazetteer, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	g := &Gazetteer{cities: make(map[string]struct{}, len(rows)*2)}
	for i, row := range rows {
		if i == 0 || len(row) == 0 { // header
			continue
		}
		city := row[0]
		g.cities[Normalize(city)] = struct{}{}
		if strings.Contains(city, "-") {
			for _, part := range strings.Split(city, "-") {
				g.cities[Normalize(part)] = struct{}{}
			}
		}
	}
	return g, nil
}

// Normalize lowercases a city name and folds hyphens to spaces.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(name, "-", " "))), " ")
}

// Contains reports whether the normalized input names a known city.
func (g *Gazetteer) Contains(name string) bool {
	_, ok := g.cities[Normalize(name)]
	return ok
}
