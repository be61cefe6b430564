package model

import "github.com/erazemk/mechatrack/internal/errs"

// Item is a spare part held in stock.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Quantity  int       `json:"quantity"`
	Price     *float64  `json:"price"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// NewItem is the input for creating an item. Quantity is required but may be zero.
type NewItem struct {
	Name     string   `json:"name" validate:"required"`
	Category *string  `json:"category"`
	Quantity *int     `json:"quantity" validate:"required"`
	Price    *float64 `json:"price"`
}

// MsgItemRequired is returned when name or quantity is missing.
const MsgItemRequired = "Name and quantity required"

func (n NewItem) Validate() error {
	if err := Check(n); err != nil {
		return errs.Validation(MsgItemRequired)
	}
	return nil
}

// ItemPatch carries the fields supplied on update.
type ItemPatch struct {
	Name     Optional[string]  `json:"name"`
	Category Optional[string]  `json:"category"`
	Quantity Optional[int]     `json:"quantity"`
	Price    Optional[float64] `json:"price"`
}

// Apply merges the supplied fields into it.
func (p ItemPatch) Apply(it *Item) error {
	if p.Name.Set {
		if p.Name.Null {
			return errs.Validation("name cannot be null")
		}
		it.Name = p.Name.Value
	}
	if p.Quantity.Set {
		if p.Quantity.Null {
			return errs.Validation("quantity cannot be null")
		}
		it.Quantity = p.Quantity.Value
	}
	if p.Category.Set {
		it.Category = NewCategory(p.Category.Ptr())
	}
	if p.Price.Set {
		it.Price = p.Price.Ptr()
	}
	return nil
}
