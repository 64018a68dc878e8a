// Package store persists run history in an embedded sqlite database.
package store

import (
	"database/sql"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/pkg/errors"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

// RunStore records completed runs and their step results.
type RunStore struct {
	DB *sql.DB
}

// Open opens (and if needed creates) the run history database.
func Open(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open run store %s", dbPath)
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			workflow TEXT,
			event TEXT,
			conclusion TEXT,
			started_at DATETIME,
			completed_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS step_results (
			run_id TEXT,
			job TEXT,
			idx INTEGER,
			step TEXT,
			conclusion TEXT,
			exit_code INTEGER,
			started_at DATETIME,
			completed_at DATETIME
		);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create run store tables")
		}
	}

	return &RunStore{DB: db}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.DB.Close()
}

// SaveRun persists a completed run with all its step results.
func (s *RunStore) SaveRun(res *model.RunResult) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer tx.Rollback() //nolint

	query := `INSERT INTO runs (id, workflow, event, conclusion, started_at, completed_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.Exec(query, res.ID, res.Workflow, res.Event, string(res.Conclusion), res.StartedAt, res.CompletedAt)
	if err != nil {
		return errors.Wrapf(err, "unable to insert run %s", res.ID)
	}

	stepQuery := `INSERT INTO step_results (run_id, job, idx, step, conclusion, exit_code, started_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, job := range res.Jobs {
		for _, step := range job.Steps {
			_, err = tx.Exec(stepQuery, res.ID, job.Name, step.Index, step.Name, string(step.Conclusion), step.ExitCode, step.StartedAt, step.CompletedAt)
			if err != nil {
				return errors.Wrapf(err, "unable to insert step %s of run %s", step.Name, res.ID)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "unable to commit run")
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID          string
	Workflow    string
	Event       string
	Conclusion  model.Conclusion
	StartedAt   time.Time
	CompletedAt time.Time
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(limit int) ([]RunSummary, error) {
	query := `
		SELECT id, workflow, event, conclusion, started_at, completed_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list runs")
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var conclusion string
		if err := rows.Scan(&run.ID, &run.Workflow, &run.Event, &conclusion, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, errors.Wrap(err, "unable to scan run row")
		}
		run.Conclusion = model.Conclusion(conclusion)
		runs = append(runs, run)
	}

	return runs, errors.Wrap(rows.Err(), "unable to iterate run rows")
}

// StepRow is one persisted step result.
type StepRow struct {
	Job         string
	Index       int
	Step        string
	Conclusion  model.Conclusion
	ExitCode    int
	StartedAt   time.Time
	CompletedAt time.Time
}

// GetRun returns the summary and step results of one run.
func (s *RunStore) GetRun(id string) (*RunSummary, []StepRow, error) {
	query := `SELECT id, workflow, event, conclusion, started_at, completed_at FROM runs WHERE id = ?`
	var run RunSummary
	var conclusion string
	err := s.DB.QueryRow(query, id).Scan(&run.ID, &run.Workflow, &run.Event, &conclusion, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to load run %s", id)
	}
	run.Conclusion = model.Conclusion(conclusion)

	stepQuery := `
		SELECT job, idx, step, conclusion, exit_code, started_at, completed_at
		FROM step_results
		WHERE run_id = ?
		ORDER BY job, idx`
	rows, err := s.DB.Query(stepQuery, id)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to load steps of run %s", id)
	}
	defer rows.Close()

	var steps []StepRow
	for rows.Next() {
		var step StepRow
		var stepConclusion string
		if err := rows.Scan(&step.Job, &step.Index, &step.Step, &stepConclusion, &step.ExitCode, &step.StartedAt, &step.CompletedAt); err != nil {
			return nil, nil, errors.Wrap(err, "unable to scan step row")
		}
		step.Conclusion = model.Conclusion(stepConclusion)
		steps = append(steps, step)
	}

	return &run, steps, errors.Wrap(rows.Err(), "unable to iterate step rows")
}
