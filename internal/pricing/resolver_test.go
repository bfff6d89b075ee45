package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"home-valuation/internal/model"
)

type fakeSource struct {
	prices map[string]model.DistrictPrice
	err    error
	gets   int
}

func (f *fakeSource) GetDistrictPrice(_ context.Context, code string) (*model.DistrictPrice, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.prices[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeSource) ListDistrictPrices(_ context.Context) ([]model.DistrictPrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.DistrictPrice, 0, len(f.prices))
	for _, p := range f.prices {
		out = append(out, p)
	}
	return out, nil
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, 20000.0, table.DefaultBasePrice)
	require.Len(t, table.Districts, 6)
	assert.Equal(t, model.DistrictPrice{Code: "yinzhou", Name: "鄞州区", BasePrice: 25554}, table.Districts[0])
	assert.Equal(t, "fenghua", table.Districts[5].Code)
}

func TestResolveStatic(t *testing.T) {
	r := NewResolver(DefaultTable(), nil, 0)
	ctx := context.Background()

	tests := []struct {
		input string
		code  string
		price float64
	}{
		{input: "yinzhou", code: "yinzhou", price: 25554},
		{input: "鄞州区", code: "yinzhou", price: 25554},
		{input: "海曙", code: "haishu", price: 20141},
		{input: "JiangBei", code: "jiangbei", price: 22879},
		{input: "宁波市北仑区", code: "beilun", price: 14715},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := r.Resolve(ctx, tt.input)
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, tt.price, res.BasePrice)
			assert.False(t, res.Fallback)
		})
	}
}

func TestResolveUnknownFallsBack(t *testing.T) {
	r := NewResolver(DefaultTable(), nil, 0)
	res := r.Resolve(context.Background(), "慈溪市")
	assert.True(t, res.Fallback)
	assert.Equal(t, 20000.0, res.BasePrice)
	assert.Empty(t, res.Code)

	custom := NewResolver(DefaultTable(), nil, 18000)
	assert.Equal(t, 18000.0, custom.Resolve(context.Background(), "").BasePrice)
}

func TestResolvePrefersSource(t *testing.T) {
	src := &fakeSource{prices: map[string]model.DistrictPrice{
		"yinzhou": {Code: "yinzhou", Name: "鄞州区", BasePrice: 26000},
		"cixi":    {Code: "cixi", Name: "慈溪市", BasePrice: 15000},
	}}
	r := NewResolver(DefaultTable(), src, 0)
	ctx := context.Background()

	assert.Equal(t, 26000.0, r.Resolve(ctx, "鄞州").BasePrice)
	// not in the source, static price kept
	assert.Equal(t, 20141.0, r.Resolve(ctx, "haishu").BasePrice)
	// only known to the source
	res := r.Resolve(ctx, "cixi")
	assert.Equal(t, "cixi", res.Code)
	assert.Equal(t, 15000.0, res.BasePrice)
}

func TestResolveSourceErrorUsesStatic(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	r := NewResolver(DefaultTable(), src, 0)

	res := r.Resolve(context.Background(), "zhenhai")
	assert.Equal(t, 25000.0, res.BasePrice)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, src.gets)

	assert.Len(t, r.List(context.Background()), 6)
}

func TestListMergesSource(t *testing.T) {
	src := &fakeSource{prices: map[string]model.DistrictPrice{
		"beilun": {Code: "beilun", Name: "北仑区", BasePrice: 15000},
		"cixi":   {Code: "cixi", Name: "慈溪市", BasePrice: 15000},
	}}
	list := NewResolver(DefaultTable(), src, 0).List(context.Background())
	require.Len(t, list, 7)
	assert.Equal(t, 15000.0, list[4].BasePrice)
	assert.Equal(t, "cixi", list[6].Code)
}

func TestParseTableRejectsInvalid(t *testing.T) {
	_, err := ParseTable([]byte("default_base_price: 0\ndistricts: []\n"))
	assert.Error(t, err)

	_, err = ParseTable([]byte("default_base_price: 1\ndistricts:\n  - {code: a, name: A, base_price: 1}\n  - {code: a, name: B, base_price: 2}\n"))
	assert.Error(t, err)

	_, err = ParseTable([]byte("default_base_price: 1\ndistricts:\n  - {code: a, name: A, base_price: -1}\n"))
	assert.Error(t, err)
}
