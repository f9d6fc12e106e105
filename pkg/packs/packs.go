// Package packs encodes and decodes MOQ pack labels.
//
// A label reads "3 pcs | S,M,L | 1:1:1": total pieces per pack, the
// sizes in display order, and the per-size ratio in the same order.
package packs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/threadbazaar/threadbazaar-backend/pkg/types"
)

// Pack is the decoded form of a pack label.
type Pack struct {
	TotalPieces int
	Sizes       []string
	Ratios      []int
}

// Config flattens the pack into a size to count map.
func (p Pack) Config() types.PackConfig {
	cfg := make(types.PackConfig, len(p.Sizes))
	for i, size := range p.Sizes {
		cfg[size] = p.Ratios[i]
	}
	return cfg
}

// ParseLabel decodes a pack label string. The declared piece total must
// match the ratio sum, and sizes must pair one-to-one with ratios.
func ParseLabel(label string) (*Pack, error) {
	parts := strings.Split(label, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("pack label %q: expected 3 segments, got %d", label, len(parts))
	}

	totalPart := strings.TrimSpace(parts[0])
	totalPart = strings.TrimSuffix(totalPart, "pcs")
	totalPart = strings.TrimSuffix(totalPart, "pc")
	total, err := strconv.Atoi(strings.TrimSpace(totalPart))
	if err != nil {
		return nil, fmt.Errorf("pack label %q: invalid piece total: %w", label, err)
	}
	if total < 1 {
		return nil, fmt.Errorf("pack label %q: piece total must be at least 1", label)
	}

	var sizes []string
	for _, raw := range strings.Split(parts[1], ",") {
		size := strings.TrimSpace(raw)
		if size == "" {
			return nil, fmt.Errorf("pack label %q: empty size name", label)
		}
		sizes = append(sizes, size)
	}

	var ratios []int
	sum := 0
	for _, raw := range strings.Split(parts[2], ":") {
		ratio, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("pack label %q: invalid ratio: %w", label, err)
		}
		if ratio < 0 {
			return nil, fmt.Errorf("pack label %q: negative ratio", label)
		}
		ratios = append(ratios, ratio)
		sum += ratio
	}

	if len(sizes) != len(ratios) {
		return nil, fmt.Errorf("pack label %q: %d sizes but %d ratios", label, len(sizes), len(ratios))
	}
	if sum != total {
		return nil, fmt.Errorf("pack label %q: ratios sum to %d, label says %d", label, sum, total)
	}

	return &Pack{TotalPieces: total, Sizes: sizes, Ratios: ratios}, nil
}

// FormatLabel renders a pack config as a label. sizeOrder fixes the
// segment ordering; sizes with a zero count are left out. Sizes present
// in the config but missing from sizeOrder are appended last so counts
// are never silently dropped.
func FormatLabel(cfg types.PackConfig, sizeOrder []string) string {
	seen := make(map[string]bool, len(sizeOrder))
	ordered := make([]string, 0, len(cfg))
	for _, size := range sizeOrder {
		seen[size] = true
		if cfg[size] > 0 {
			ordered = append(ordered, size)
		}
	}
	extras := make([]string, 0)
	for size, count := range cfg {
		if !seen[size] && count > 0 {
			extras = append(extras, size)
		}
	}
	sort.Strings(extras)
	ordered = append(ordered, extras...)

	total := 0
	ratios := make([]string, 0, len(ordered))
	for _, size := range ordered {
		total += cfg[size]
		ratios = append(ratios, strconv.Itoa(cfg[size]))
	}

	return fmt.Sprintf("%d pcs | %s | %s", total, strings.Join(ordered, ","), strings.Join(ratios, ":"))
}
