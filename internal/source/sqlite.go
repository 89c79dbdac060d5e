package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	_ "modernc.org/sqlite"
)

// Schema is the SQLite layout read by SQLite.Load and written by Save.
const Schema = `
CREATE TABLE IF NOT EXISTS variables (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	color    TEXT NOT NULL,
	unit     TEXT NOT NULL DEFAULT '',
	min      REAL NOT NULL,
	max      REAL NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS points (
	id        TEXT PRIMARY KEY,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL,
	timestamp INTEGER NOT NULL,
	position  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS point_values (
	point_id    TEXT NOT NULL REFERENCES points(id) ON DELETE CASCADE,
	variable_id TEXT NOT NULL,
	value       REAL NOT NULL,
	PRIMARY KEY (point_id, variable_id)
);
CREATE TABLE IF NOT EXISTS regions (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	color    TEXT NOT NULL,
	opacity  REAL NOT NULL,
	vertices TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	position INTEGER NOT NULL DEFAULT 0
);
`

// SQLite loads a dataset from a SQLite file.
type SQLite struct {
	Path string
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Load reads every table. Rows come back in their stored position order.
func (s *SQLite) Load(ctx context.Context) (domain.Dataset, error) {
	db, err := open(ctx, s.Path)
	if err != nil {
		return domain.Dataset{}, err
	}
	defer db.Close()

	vars, err := loadVariables(ctx, db)
	if err != nil {
		return domain.Dataset{}, err
	}
	points, err := loadPoints(ctx, db)
	if err != nil {
		return domain.Dataset{}, err
	}
	regions, err := loadRegions(ctx, db)
	if err != nil {
		return domain.Dataset{}, err
	}
	return domain.Dataset{Variables: vars, Points: points, Polygons: regions}, nil
}

func loadVariables(ctx context.Context, db *sql.DB) ([]domain.Variable, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, color, unit, min, max FROM variables ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query variables: %w", err)
	}
	defer rows.Close()

	var out []domain.Variable
	for rows.Next() {
		var v domain.Variable
		if err := rows.Scan(&v.ID, &v.DisplayName, &v.Color, &v.Unit, &v.Min, &v.Max); err != nil {
			return nil, fmt.Errorf("scan variable: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func loadPoints(ctx context.Context, db *sql.DB) ([]domain.SamplePoint, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, latitude, longitude, timestamp FROM points ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	var out []domain.SamplePoint
	index := make(map[string]int)
	for rows.Next() {
		p := domain.SamplePoint{Values: map[string]float64{}}
		if err := rows.Scan(&p.ID, &p.Latitude, &p.Longitude, &p.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan point: %w", err)
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read points: %w", err)
	}

	vrows, err := db.QueryContext(ctx, `SELECT point_id, variable_id, value FROM point_values`)
	if err != nil {
		return nil, fmt.Errorf("query point values: %w", err)
	}
	defer vrows.Close()
	for vrows.Next() {
		var pointID, variableID string
		var value float64
		if err := vrows.Scan(&pointID, &variableID, &value); err != nil {
			return nil, fmt.Errorf("scan point value: %w", err)
		}
		if i, ok := index[pointID]; ok {
			out[i].Values[variableID] = value
		}
	}
	return out, vrows.Err()
}

func loadRegions(ctx context.Context, db *sql.DB) ([]domain.Polygon, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, color, opacity, vertices, metadata FROM regions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	var out []domain.Polygon
	for rows.Next() {
		var p domain.Polygon
		var vertices, metadata string
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Opacity, &vertices, &metadata); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		if err := json.Unmarshal([]byte(vertices), &p.Vertices); err != nil {
			return nil, fmt.Errorf("region %s vertices: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(metadata), &p.Metadata); err != nil {
			return nil, fmt.Errorf("region %s metadata: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Save creates the schema at path and writes ds in one transaction, replacing
// rows with the same ids.
func Save(ctx context.Context, path string, ds domain.Dataset) error {
	db, err := open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := writeDataset(ctx, tx, ds); err != nil {
		tx.Rollback() //nolint:errcheck // the write error is what matters
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset: %w", err)
	}
	return nil
}

func writeDataset(ctx context.Context, tx *sql.Tx, ds domain.Dataset) error {
	for i, v := range ds.Variables {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO variables (id, name, color, unit, min, max, position) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.DisplayName, v.Color, v.Unit, v.Min, v.Max, i); err != nil {
			return fmt.Errorf("insert variable %s: %w", v.ID, err)
		}
	}
	for i, p := range ds.Points {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO points (id, latitude, longitude, timestamp, position) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Latitude, p.Longitude, p.Timestamp, i); err != nil {
			return fmt.Errorf("insert point %s: %w", p.ID, err)
		}
		for variableID, value := range p.Values {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO point_values (point_id, variable_id, value) VALUES (?, ?, ?)`,
				p.ID, variableID, value); err != nil {
				return fmt.Errorf("insert value %s/%s: %w", p.ID, variableID, err)
			}
		}
	}
	for i, r := range ds.Polygons {
		vertices, err := json.Marshal(r.Vertices)
		if err != nil {
			return fmt.Errorf("encode region %s vertices: %w", r.ID, err)
		}
		meta := r.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metadata, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode region %s metadata: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO regions (id, name, color, opacity, vertices, metadata, position) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Color, r.Opacity, string(vertices), string(metadata), i); err != nil {
			return fmt.Errorf("insert region %s: %w", r.ID, err)
		}
	}
	return nil
}
