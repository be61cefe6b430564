package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/mechatrack/internal/model"
)

// MsgToolNotFound is returned for unknown tool ids.
const MsgToolNotFound = "Tool not found"

var toolsTable = table[model.Tool]{
	name:     "tools",
	columns:  "id, name, category, status, borrower, created_at, updated_at",
	scan:     scanTool,
	notFound: MsgToolNotFound,
}

func scanTool(s scanner) (model.Tool, error) {
	var tool model.Tool
	var borrower sql.NullString
	err := s.Scan(&tool.ID, &tool.Name, &tool.Category, &tool.Status, &borrower, &tool.CreatedAt, &tool.UpdatedAt)
	tool.Borrower = stringPtr(borrower)
	return tool, err
}

// Tools persists workshop tools.
type Tools struct {
	DB  *sql.DB
	Now func() time.Time
}

func (s *Tools) List(ctx context.Context) ([]model.Tool, error) {
	return toolsTable.list(ctx, s.DB)
}

func (s *Tools) Get(ctx context.Context, id int64) (*model.Tool, error) {
	return toolsTable.get(ctx, s.DB, id)
}

// Create validates and inserts a new tool; status defaults to Available.
func (s *Tools) Create(ctx context.Context, in model.NewTool) (*model.Tool, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := model.NewTimestamp(clock(s.Now))
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO tools (name, category, status, borrower, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, nullString(in.Category), in.StatusOrDefault(), nullString(in.Borrower), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating tool: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting tool id: %w", err)
	}
	return s.Get(ctx, id)
}

// Update merges patch into the stored tool and refreshes updated_at.
func (s *Tools) Update(ctx context.Context, id int64, patch model.ToolPatch) (*model.Tool, error) {
	tool, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(tool); err != nil {
		return nil, err
	}
	tool.UpdatedAt = model.NewTimestamp(clock(s.Now))

	result, err := s.DB.ExecContext(ctx,
		`UPDATE tools SET name = ?, category = ?, status = ?, borrower = ?, updated_at = ?
		 WHERE id = ?`,
		tool.Name, tool.Category, tool.Status, nullString(tool.Borrower), tool.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating tool: %w", err)
	}
	if err := checkUpdated(result, MsgToolNotFound); err != nil {
		return nil, err
	}
	return tool, nil
}

func (s *Tools) Delete(ctx context.Context, id int64) error {
	return toolsTable.delete(ctx, s.DB, id)
}

func (s *Tools) Count(ctx context.Context) (int, error) {
	return toolsTable.count(ctx, s.DB)
}
