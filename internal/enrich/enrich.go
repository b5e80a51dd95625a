// Package enrich fills the sparse fuel station records coming off the
// intermediate topic with data from the offline-seeded station reference
// table, then republishes the completed envelope to the results topic.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"roadtrip/internal/broker"
	"roadtrip/internal/metrics"
	"roadtrip/internal/model"
	"roadtrip/internal/store"
)

type Enricher struct {
	Bus   broker.Bus
	Store store.Store
}

// Process joins each station in the envelope against the reference table by
// exact coordinate. Stations with no reference row pass through unchanged;
// a reference lookup error leaves the message unacknowledged.
func (e *Enricher) Process(ctx context.Context, payload []byte) error {
	var env model.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Printf("enrich: dropping malformed envelope: %v", err)
		return nil
	}
	for i := range env.Places {
		p := &env.Places[i]
		ref, err := e.Store.StationReference(ctx, model.GeoPoint{Lat: p.Latitude, Lng: p.Longitude})
		if errors.Is(err, store.ErrNotFound) {
			metrics.CacheLookups.WithLabelValues("gas_stations", "miss").Inc()
			continue
		}
		if err != nil {
			return err
		}
		metrics.CacheLookups.WithLabelValues("gas_stations", "hit").Inc()
		apply(p, ref)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := e.Bus.Publish(ctx, broker.TopicResults, data); err != nil {
		return err
	}
	metrics.MessagesPublished.WithLabelValues(broker.TopicResults, string(env.PlaceType)).Inc()
	return nil
}

// apply copies only the fields the search provider left empty.
func apply(p *model.PlaceRecord, ref model.StationReference) {
	if len(p.WorkingHours) == 0 {
		p.WorkingHours = ref.WorkingHours
	}
	if p.Petrol98 == nil {
		p.Petrol98 = ref.Petrol98
	}
	if p.ElectricCharge == nil {
		p.ElectricCharge = ref.ElectricCharge
	}
	if p.ConvenientStore == nil {
		p.ConvenientStore = ref.ConvenientStore
	}
	if p.CarWash == nil {
		p.CarWash = ref.CarWash
	}
}
