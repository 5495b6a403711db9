package firefly

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Firefly III serializes numeric ids as JSON strings ("123") in some
// places and bare numbers in others. flexID accepts both, and null.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing id %q: %w", s, err)
		}
		*f = flexID(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexID(v)
	return nil
}

func (f *flexID) ptr() *int64 {
	if f == nil || *f == 0 {
		return nil
	}
	v := int64(*f)
	return &v
}

func decimalPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

type listResponse struct {
	Data []apiItem `json:"data"`
	Meta struct {
		Pagination struct {
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	} `json:"meta"`
}

type itemResponse struct {
	Data apiItem `json:"data"`
}

type apiItem struct {
	ID         flexID          `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

func (i apiItem) decode(out any) error {
	if err := json.Unmarshal(i.Attributes, out); err != nil {
		return fmt.Errorf("decoding attributes of item %d: %w", int64(i.ID), err)
	}
	return nil
}
