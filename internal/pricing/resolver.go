// Package pricing resolves the base unit price of a district.
package pricing

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"home-valuation/internal/logger"
	"home-valuation/internal/model"
	"home-valuation/internal/utils"
)

//go:embed districts.yaml
var defaultDistricts []byte

// PriceSource is an optional external district price table, e.g. Postgres.
// GetDistrictPrice returns (nil, nil) when the code is unknown.
type PriceSource interface {
	GetDistrictPrice(ctx context.Context, code string) (*model.DistrictPrice, error)
	ListDistrictPrices(ctx context.Context) ([]model.DistrictPrice, error)
}

// Resolution is the outcome of a base price lookup
type Resolution struct {
	Code      string  `json:"code,omitempty"`
	Name      string  `json:"name,omitempty"`
	BasePrice float64 `json:"basePrice"`
	Fallback  bool    `json:"fallback"` // no district matched; default price used
}

// Table is the static district price table
type Table struct {
	DefaultBasePrice float64               `yaml:"default_base_price"`
	Districts        []model.DistrictPrice `yaml:"districts"`
}

// ParseTable parses and validates a district table
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse district table: %w", err)
	}
	if t.DefaultBasePrice <= 0 {
		return nil, fmt.Errorf("district table: default_base_price must be positive")
	}
	seen := make(map[string]bool, len(t.Districts))
	for _, d := range t.Districts {
		if d.Code == "" || d.Name == "" {
			return nil, fmt.Errorf("district table: entry missing code or name")
		}
		if seen[d.Code] {
			return nil, fmt.Errorf("district table: duplicate code %s", d.Code)
		}
		if d.BasePrice <= 0 {
			return nil, fmt.Errorf("district table: %s base price must be positive", d.Code)
		}
		seen[d.Code] = true
	}
	return &t, nil
}

// DefaultTable returns the embedded district table
func DefaultTable() *Table {
	t, err := ParseTable(defaultDistricts)
	if err != nil {
		panic(err)
	}
	return t
}

// Match finds the district named by the input (code or name, any case)
func (t *Table) Match(input string) (model.DistrictPrice, bool) {
	for _, d := range t.Districts {
		if utils.FuzzyMatchDistrict(input, d.Code, d.Name) {
			return d, true
		}
	}
	return model.DistrictPrice{}, false
}

// Resolver looks up base prices, preferring the external source when present
type Resolver struct {
	table        *Table
	source       PriceSource
	defaultPrice float64
}

// NewResolver creates a resolver over the table. source may be nil.
// A positive defaultPrice overrides the table default.
func NewResolver(table *Table, source PriceSource, defaultPrice float64) *Resolver {
	if defaultPrice <= 0 {
		defaultPrice = table.DefaultBasePrice
	}
	return &Resolver{table: table, source: source, defaultPrice: defaultPrice}
}

// Resolve never fails: source errors are logged and the static table is used,
// and an unknown district falls back to the default base price.
func (r *Resolver) Resolve(ctx context.Context, district string) Resolution {
	log := logger.FromContext(ctx)

	d, ok := r.table.Match(district)
	if !ok && r.source != nil {
		d, ok = r.matchSource(ctx, district)
	}
	if !ok {
		log.Warn("unknown district, using default base price",
			slog.String("district", district),
			slog.Float64("base_price", r.defaultPrice),
		)
		return Resolution{BasePrice: r.defaultPrice, Fallback: true}
	}

	if r.source != nil {
		price, err := r.source.GetDistrictPrice(ctx, d.Code)
		switch {
		case err != nil:
			log.Error("district price source failed, using static table",
				slog.String("district", d.Code),
				slog.Any("error", err),
			)
		case price != nil && price.BasePrice > 0:
			d = *price
		}
	}

	return Resolution{Code: d.Code, Name: d.Name, BasePrice: d.BasePrice}
}

func (r *Resolver) matchSource(ctx context.Context, district string) (model.DistrictPrice, bool) {
	prices, err := r.source.ListDistrictPrices(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("district price source failed", slog.Any("error", err))
		return model.DistrictPrice{}, false
	}
	for _, d := range prices {
		if utils.FuzzyMatchDistrict(district, d.Code, d.Name) {
			return d, true
		}
	}
	return model.DistrictPrice{}, false
}

// List returns the known districts; source prices override static ones
func (r *Resolver) List(ctx context.Context) []model.DistrictPrice {
	out := make([]model.DistrictPrice, len(r.table.Districts))
	copy(out, r.table.Districts)
	if r.source == nil {
		return out
	}

	prices, err := r.source.ListDistrictPrices(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("district price source failed, listing static table", slog.Any("error", err))
		return out
	}

	index := make(map[string]int, len(out))
	for i, d := range out {
		index[d.Code] = i
	}
	for _, p := range prices {
		if i, ok := index[p.Code]; ok {
			out[i] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// DefaultBasePrice is the price used for unknown districts
func (r *Resolver) DefaultBasePrice() float64 {
	return r.defaultPrice
}
