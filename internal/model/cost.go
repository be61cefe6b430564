package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/erazemk/mechatrack/internal/errs"
)

// Messages returned for job cost input.
const (
	MsgCostRequired = "cost is required"
	MsgCostInvalid  = "Cost must be a valid number"
	MsgCostPositive = "Cost must be positive"
)

// ParseCost reads a job cost for creation. Missing or falsy values (null,
// 0, "", false, empty arrays/objects) are "required"; numbers and numeric
// strings are accepted; the result must be positive.
func ParseCost(raw json.RawMessage) (float64, error) {
	v, err := decodeLoose(raw)
	if err != nil {
		return 0, errs.Validation(MsgCostInvalid)
	}
	if falsy(v) {
		return 0, errs.Validation(MsgCostRequired)
	}
	cost, ok := toFloat(v)
	if !ok {
		return 0, errs.Validation(MsgCostInvalid)
	}
	if cost <= 0 {
		return 0, errs.Validation(MsgCostPositive)
	}
	return cost, nil
}

// CoerceCost converts a cost supplied on update to a float. Any finite
// number or numeric string is accepted, including zero.
func CoerceCost(raw json.RawMessage) (float64, error) {
	v, err := decodeLoose(raw)
	if err != nil {
		return 0, errs.Validation(MsgCostInvalid)
	}
	cost, ok := toFloat(v)
	if !ok {
		return 0, errs.Validation(MsgCostInvalid)
	}
	return cost, nil
}

func decodeLoose(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
