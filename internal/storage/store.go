package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/skalor/trajlab/internal/trajectory"
)

// Store persists runs as one directory per run (metadata.json plus
// trajectory.csv) with a sqlite index answering list queries.
type Store struct {
	baseDir string
	db      *sql.DB
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Seed       int64              `json:"seed"`
	Steps      int                `json:"steps"`
	Created    time.Time          `json:"created"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`

	// Trajectory parameters live here rather than in the CSV table.
	ParameterNames []string  `json:"parameter_names,omitempty"`
	Parameters     []float64 `json:"parameters,omitempty"`
}

func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, "runs.db"))
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			model TEXT,
			integrator TEXT,
			controller TEXT,
			dt DOUBLE,
			duration DOUBLE,
			steps INTEGER,
			created TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{baseDir: baseDir, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the run directory and indexes it, returning the run ID.
func (s *Store) Save(meta RunMetadata, traj *trajectory.Trajectory) (string, error) {
	runID := fmt.Sprintf("%s_%s", meta.Model, uuid.NewString()[:8])
	meta.ID = runID
	meta.Steps = traj.NumTimes()
	if meta.Created.IsZero() {
		meta.Created = time.Now().UTC()
	}
	meta.ParameterNames = traj.ParameterNames
	meta.Parameters = traj.Parameters

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := traj.WriteCSV(csvFile); err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, model, integrator, controller, dt, duration, steps, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Model, meta.Integrator, meta.Controller,
		meta.Dt, meta.Duration, meta.Steps, meta.Created,
	)
	if err != nil {
		return "", err
	}
	return runID, nil
}

// List returns indexed runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(
		`SELECT id, model, integrator, controller, dt, duration, steps, created
		 FROM runs ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var m RunMetadata
		err := rows.Scan(&m.ID, &m.Model, &m.Integrator, &m.Controller,
			&m.Dt, &m.Duration, &m.Steps, &m.Created)
		if err != nil {
			return nil, err
		}
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// LoadMetadata reads a run's metadata.json.
func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var m RunMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadTrajectory reads a run's trajectory table, reattaching the
// parameters stored in its metadata.
func (s *Store) LoadTrajectory(runID string) (*trajectory.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	traj, err := trajectory.ReadCSV(f)
	if err != nil {
		return nil, err
	}

	meta, err := s.LoadMetadata(runID)
	if err != nil {
		return nil, err
	}
	traj.ParameterNames = meta.ParameterNames
	traj.Parameters = meta.Parameters
	return traj, nil
}
