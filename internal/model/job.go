package model

import (
	"encoding/json"
	"strings"

	"github.com/erazemk/mechatrack/internal/errs"
)

// Job statuses counted by the report. Any other text is allowed.
const (
	JobStatusPending    = "Pending"
	JobStatusInProgress = "In Progress"
	JobStatusCompleted  = "Completed"
)

// Job is a repair job card.
type Job struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	VehicleReg   string    `json:"vehicle_reg"`
	Service      string    `json:"service"`
	Cost         float64   `json:"cost"`
	Status       string    `json:"status"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// NewJob is the input for creating a job. Fields are checked in declaration order.
type NewJob struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	VehicleReg   string  `json:"vehicle_reg" validate:"required"`
	Service      string  `json:"service" validate:"required"`
	Cost         float64 `json:"cost" validate:"gt=0"`
	Status       *string `json:"status"`
}

func (n NewJob) Validate() error {
	return Check(n)
}

// Normalized trims the text fields and applies the default status.
func (n NewJob) Normalized() NewJob {
	n.CustomerName = strings.TrimSpace(n.CustomerName)
	n.VehicleReg = strings.TrimSpace(n.VehicleReg)
	n.Service = strings.TrimSpace(n.Service)
	if n.Status == nil {
		status := JobStatusPending
		n.Status = &status
	}
	return n
}

// NewJobRequest is the create payload as sent by clients. Cost may be a
// number or a numeric string.
type NewJobRequest struct {
	CustomerName string          `json:"customer_name" validate:"required"`
	VehicleReg   string          `json:"vehicle_reg" validate:"required"`
	Service      string          `json:"service" validate:"required"`
	Cost         json.RawMessage `json:"cost"`
	Status       *string         `json:"status"`
}

// NewJob checks presence before trimming, then parses the cost.
func (r NewJobRequest) NewJob() (NewJob, error) {
	if err := Check(r); err != nil {
		return NewJob{}, err
	}
	cost, err := ParseCost(r.Cost)
	if err != nil {
		return NewJob{}, err
	}
	return NewJob{
		CustomerName: r.CustomerName,
		VehicleReg:   r.VehicleReg,
		Service:      r.Service,
		Cost:         cost,
		Status:       r.Status,
	}, nil
}

// JobPatch carries the fields supplied on update. Cost is kept raw so that
// numeric strings can be coerced.
type JobPatch struct {
	CustomerName Optional[string]          `json:"customer_name"`
	VehicleReg   Optional[string]          `json:"vehicle_reg"`
	Service      Optional[string]          `json:"service"`
	Cost         Optional[json.RawMessage] `json:"cost"`
	Status       Optional[string]          `json:"status"`
}

// Apply merges the supplied fields into j.
func (p JobPatch) Apply(j *Job) error {
	for _, f := range []struct {
		name string
		opt  Optional[string]
		dst  *string
	}{
		{"customer_name", p.CustomerName, &j.CustomerName},
		{"vehicle_reg", p.VehicleReg, &j.VehicleReg},
		{"service", p.Service, &j.Service},
		{"status", p.Status, &j.Status},
	} {
		if !f.opt.Set {
			continue
		}
		if f.opt.Null {
			return errs.Validation(f.name + " cannot be null")
		}
		*f.dst = f.opt.Value
	}

	if p.Cost.Set {
		if p.Cost.Null {
			return errs.Validation(MsgCostInvalid)
		}
		cost, err := CoerceCost(p.Cost.Value)
		if err != nil {
			return err
		}
		j.Cost = cost
	}
	return nil
}
