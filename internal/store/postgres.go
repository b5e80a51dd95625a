package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"roadtrip/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }

// MigrateDir applies every *.sql file in dir in lexical order (dev helper).
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(b)); err != nil {
			return fmt.Errorf("migrate %s: %w", f, err)
		}
	}
	return nil
}

func (p *Postgres) GetRoute(ctx context.Context, origin, destination string) (model.CachedRoute, error) {
	var r model.CachedRoute
	var waypoints []byte
	err := p.db.QueryRowContext(ctx, `SELECT origin, destination, summary, total_distance_m, waypoints FROM cached_routes WHERE origin=$1 AND destination=$2`, origin, destination).
		Scan(&r.Origin, &r.Destination, &r.Summary, &r.TotalDistance, &waypoints)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { return r, ErrNotFound }
		return r, err
	}
	if err := json.Unmarshal(waypoints, &r.Waypoints); err != nil { return r, err }
	return r, nil
}

func (p *Postgres) PutRoute(ctx context.Context, r model.CachedRoute) error {
	waypoints, err := json.Marshal(r.Waypoints)
	if err != nil { return err }
	_, err = p.db.ExecContext(ctx, `INSERT INTO cached_routes (origin, destination, summary, total_distance_m, waypoints) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (origin, destination) DO NOTHING`, r.Origin, r.Destination, r.Summary, r.TotalDistance, waypoints)
	return err
}

func placeTable(category model.Category) (string, error) {
	switch category {
	case model.CategoryFuel:
		return "gas_station_places", nil
	case model.CategoryFood:
		return "restaurant_places", nil
	}
	return "", fmt.Errorf("no place table for category %s", category)
}

func (p *Postgres) GetPlace(ctx context.Context, category model.Category, placeID string) (model.PlaceRecord, error) {
	table, err := placeTable(category)
	if err != nil { return model.PlaceRecord{}, err }
	var data []byte
	err = p.db.QueryRowContext(ctx, `SELECT record FROM `+table+` WHERE place_id=$1`, placeID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { return model.PlaceRecord{}, ErrNotFound }
		return model.PlaceRecord{}, err
	}
	var rec model.PlaceRecord
	if err := json.Unmarshal(data, &rec); err != nil { return model.PlaceRecord{}, err }
	return rec, nil
}

func (p *Postgres) PutPlace(ctx context.Context, category model.Category, rec model.PlaceRecord) error {
	table, err := placeTable(category)
	if err != nil { return err }
	data, err := json.Marshal(rec)
	if err != nil { return err }
	_, err = p.db.ExecContext(ctx, `INSERT INTO `+table+` (place_id, name, latitude, longitude, record) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (place_id) DO NOTHING`, rec.PlaceID, rec.Name, rec.Latitude, rec.Longitude, data)
	return err
}

func (p *Postgres) AttractionsByAnchor(ctx context.Context, anchor model.GeoPoint) ([]model.AttractionRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT record FROM attractions WHERE anchor_lat=$1 AND anchor_lng=$2 ORDER BY created_at`, anchor.Lat, anchor.Lng)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []model.AttractionRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil { return nil, err }
		var a model.AttractionRecord
		if err := json.Unmarshal(data, &a); err != nil { return nil, err }
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) AttractionExists(ctx context.Context, at model.GeoPoint) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx, `SELECT 1 FROM attractions WHERE latitude=$1 AND longitude=$2`, at.Lat, at.Lng).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) { return false, nil }
	if err != nil { return false, err }
	return true, nil
}

func (p *Postgres) PutAttraction(ctx context.Context, a model.AttractionRecord) error {
	data, err := json.Marshal(a)
	if err != nil { return err }
	_, err = p.db.ExecContext(ctx, `INSERT INTO attractions (latitude, longitude, anchor_lat, anchor_lng, name, record) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (latitude, longitude) DO NOTHING`, a.Latitude, a.Longitude, a.Anchor.Lat, a.Anchor.Lng, a.Name, data)
	return err
}

func (p *Postgres) StationReference(ctx context.Context, at model.GeoPoint) (model.StationReference, error) {
	var s model.StationReference
	var hours []byte
	err := p.db.QueryRowContext(ctx, `SELECT name, latitude, longitude, working_hours, petrol98, electric_charge, convenient_store, car_wash
		FROM gas_stations WHERE latitude=$1 AND longitude=$2`, at.Lat, at.Lng).
		Scan(&s.Name, &s.Latitude, &s.Longitude, &hours, &s.Petrol98, &s.ElectricCharge, &s.ConvenientStore, &s.CarWash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { return s, ErrNotFound }
		return s, err
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &s.WorkingHours); err != nil { return s, err }
	}
	return s, nil
}
