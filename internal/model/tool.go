package model

import "github.com/erazemk/mechatrack/internal/errs"

// ToolStatusAvailable is the status of a newly added tool.
const ToolStatusAvailable = "Available"

// Tool is a workshop tool that can be lent to a borrower. Status is free text.
type Tool struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Status    string    `json:"status"`
	Borrower  *string   `json:"borrower"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// NewTool is the input for creating a tool.
type NewTool struct {
	Name     string  `json:"name" validate:"required"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
	Borrower *string `json:"borrower"`
}

// MsgToolRequired is returned when the tool name is missing.
const MsgToolRequired = "Name required"

func (n NewTool) Validate() error {
	if err := Check(n); err != nil {
		return errs.Validation(MsgToolRequired)
	}
	return nil
}

// StatusOrDefault returns the requested status or Available.
func (n NewTool) StatusOrDefault() string {
	if n.Status == nil {
		return ToolStatusAvailable
	}
	return *n.Status
}

// ToolPatch carries the fields supplied on update.
type ToolPatch struct {
	Name     Optional[string] `json:"name"`
	Category Optional[string] `json:"category"`
	Status   Optional[string] `json:"status"`
	Borrower Optional[string] `json:"borrower"`
}

// Apply merges the supplied fields into t.
func (p ToolPatch) Apply(t *Tool) error {
	if p.Name.Set {
		if p.Name.Null {
			return errs.Validation("name cannot be null")
		}
		t.Name = p.Name.Value
	}
	if p.Status.Set {
		if p.Status.Null {
			return errs.Validation("status cannot be null")
		}
		t.Status = p.Status.Value
	}
	if p.Category.Set {
		t.Category = NewCategory(p.Category.Ptr())
	}
	if p.Borrower.Set {
		t.Borrower = p.Borrower.Ptr()
	}
	return nil
}
