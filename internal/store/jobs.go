package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/mechatrack/internal/model"
)

// MsgJobNotFound is returned for unknown job ids.
const MsgJobNotFound = "Job not found"

var jobsTable = table[model.Job]{
	name:     "jobs",
	columns:  "id, customer_name, vehicle_reg, service, cost, status, created_at, updated_at",
	scan:     scanJob,
	notFound: MsgJobNotFound,
}

func scanJob(s scanner) (model.Job, error) {
	var job model.Job
	err := s.Scan(&job.ID, &job.CustomerName, &job.VehicleReg, &job.Service, &job.Cost, &job.Status, &job.CreatedAt, &job.UpdatedAt)
	return job, err
}

// Jobs persists repair job cards.
type Jobs struct {
	DB  *sql.DB
	Now func() time.Time
}

func (s *Jobs) List(ctx context.Context) ([]model.Job, error) {
	return jobsTable.list(ctx, s.DB)
}

func (s *Jobs) Get(ctx context.Context, id int64) (*model.Job, error) {
	return jobsTable.get(ctx, s.DB, id)
}

// Create validates the raw input, trims text fields and inserts the job.
func (s *Jobs) Create(ctx context.Context, in model.NewJob) (*model.Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in = in.Normalized()

	now := model.NewTimestamp(clock(s.Now))
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO jobs (customer_name, vehicle_reg, service, cost, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.CustomerName, in.VehicleReg, in.Service, in.Cost, *in.Status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting job id: %w", err)
	}
	return s.Get(ctx, id)
}

// Update merges patch into the stored job and refreshes updated_at.
func (s *Jobs) Update(ctx context.Context, id int64, patch model.JobPatch) (*model.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(job); err != nil {
		return nil, err
	}
	job.UpdatedAt = model.NewTimestamp(clock(s.Now))

	result, err := s.DB.ExecContext(ctx,
		`UPDATE jobs SET customer_name = ?, vehicle_reg = ?, service = ?, cost = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		job.CustomerName, job.VehicleReg, job.Service, job.Cost, job.Status, job.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating job: %w", err)
	}
	if err := checkUpdated(result, MsgJobNotFound); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Jobs) Delete(ctx context.Context, id int64) error {
	return jobsTable.delete(ctx, s.DB, id)
}

func (s *Jobs) Count(ctx context.Context) (int, error) {
	return jobsTable.count(ctx, s.DB)
}

// DuplicateGroup is a set of jobs for the same customer and vehicle.
type DuplicateGroup struct {
	KeepID  int64
	Removed []model.Job
}

// Dedupe deletes jobs that share customer name and vehicle registration
// (case-insensitive), keeping the lowest id of each group. It runs in a
// single transaction and reports what was removed.
func (s *Jobs) Dedupe(ctx context.Context) ([]DuplicateGroup, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+jobsTable.columns+`,
		        MIN(id) OVER (PARTITION BY LOWER(customer_name), LOWER(vehicle_reg)) AS keep_id
		 FROM jobs
		 ORDER BY keep_id, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("finding duplicate jobs: %w", err)
	}

	var groups []DuplicateGroup
	for rows.Next() {
		var job model.Job
		var keepID int64
		if err := rows.Scan(&job.ID, &job.CustomerName, &job.VehicleReg, &job.Service, &job.Cost, &job.Status, &job.CreatedAt, &job.UpdatedAt, &keepID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		if job.ID == keepID {
			continue
		}
		if len(groups) == 0 || groups[len(groups)-1].KeepID != keepID {
			groups = append(groups, DuplicateGroup{KeepID: keepID})
		}
		g := &groups[len(groups)-1]
		g.Removed = append(g.Removed, job)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("finding duplicate jobs: %w", err)
	}
	rows.Close()

	for _, g := range groups {
		for _, job := range g.Removed {
			if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, job.ID); err != nil {
				return nil, fmt.Errorf("deleting duplicate job %d: %w", job.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing dedupe: %w", err)
	}
	return groups, nil
}
