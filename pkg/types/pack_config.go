package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PackConfig maps size names to per-pack piece counts, e.g. {"S":1,"M":2,"L":1}.
// Stored as a JSON column.
type PackConfig map[string]int

func (p PackConfig) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (p *PackConfig) Scan(src any) error {
	if src == nil {
		*p = PackConfig{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported pack config source type %T", src)
	}

	if len(raw) == 0 {
		*p = PackConfig{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// TotalPieces sums the per-size counts of one pack.
func (p PackConfig) TotalPieces() int {
	total := 0
	for _, count := range p {
		total += count
	}
	return total
}

// IsEmpty reports whether every size count is zero.
func (p PackConfig) IsEmpty() bool {
	return p.TotalPieces() == 0
}
