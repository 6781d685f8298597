package normalize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected *float64
	}{
		{"nil", nil, nil},
		{"float64 passthrough", 149.99, fp(149.99)},
		{"int", 42, fp(42)},
		{"currency string", "149,99 $", fp(149.99)},
		{"percent string", "62 %", fp(62)},
		{"grouped thousands", "1 249,00 $", fp(1249.00)},
		{"non-breaking space", "1 249,00 $", fp(1249.00)},
		{"dot decimal string", "349.00", fp(349.00)},
		{"empty string", "", nil},
		{"garbage string", "n/a", nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNumber(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 0.001)
		})
	}
}

func TestItemWritesBothKeyFamilies(t *testing.T) {
	item := map[string]interface{}{
		"name":          "Scie circulaire",
		"regular_price": "395,00 $",
		"sale_price":    150.0,
		"discount_pct":  "62,03",
		"stock_text":    "En inventaire",
	}

	out := Item(item, 39, "Québec (QC)")

	assert.Equal(t, 395.00, out["price_regular"])
	assert.Equal(t, 395.00, out["priceRegular"])
	assert.Equal(t, 150.00, out["price_sale"])
	assert.Equal(t, 150.00, out["priceSale"])
	assert.Equal(t, 62.03, out["discount_pct"])
	assert.Equal(t, 62.03, out["discountPercent"])
	assert.Equal(t, "En inventaire", out["stock_text"])
	assert.Equal(t, "En inventaire", out["stockText"])
	assert.Equal(t, 39, out["store_id"])
	assert.Equal(t, 39, out["storeId"])
	assert.Equal(t, "Québec (QC)", out["store_label"])
	assert.Equal(t, "Québec (QC)", out["storeLabel"])
	// unrecognized fields pass through untouched
	assert.Equal(t, "Scie circulaire", out["name"])
}

func TestItemDoesNotMutateInput(t *testing.T) {
	item := map[string]interface{}{"sale_price": "150,00 $"}

	Item(item, 39, "Québec (QC)")

	assert.Len(t, item, 1)
	assert.Equal(t, "150,00 $", item["sale_price"])
}

func TestItemMissingPricesStayNil(t *testing.T) {
	out := Item(map[string]interface{}{"name": "Produit"}, 7, "Lévis (QC)")

	assert.Nil(t, out["price_sale"])
	assert.Nil(t, out["priceSale"])
	assert.Nil(t, out["price_regular"])
	assert.Nil(t, out["discount_pct"])
}

func TestItemIsIdempotent(t *testing.T) {
	item := map[string]interface{}{
		"name":          "Produit",
		"regular_price": "395,00 $",
		"sale_price":    "150,00 $",
	}

	once := Item(item, 39, "Québec (QC)")
	twice := Item(once, 39, "Québec (QC)")

	a, err := json.Marshal(once)
	require.NoError(t, err)
	b, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestFileWithBareList(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "working.json")
	dst := filepath.Join(dir, "pub", "published.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"name":"Produit","sale_price":"150,00 $","regular_price":"395,00 $"}]`), 0o644))

	require.NoError(t, File(src, dst, 39, "Québec (QC)"))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, 150.00, items[0]["price_sale"])
	assert.Equal(t, 395.00, items[0]["priceRegular"])
	assert.Equal(t, float64(39), items[0]["storeId"])
}

func TestFileWithItemsWrapper(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "working.json")
	dst := filepath.Join(dir, "published.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"generated":"2026-08-27","items":[{"sale_price":100,"regular_price":200}]}`), 0o644))

	require.NoError(t, File(src, dst, 7, "Lévis (QC)"))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	// wrapper metadata survives normalization
	assert.Equal(t, "2026-08-27", payload["generated"])
	items, ok := payload["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, 100.00, item["price_sale"])
	assert.Equal(t, "Lévis (QC)", item["store_label"])
}

func TestFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "working.json")
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"name":"Produit","sale_price":"150,00 $","regular_price":"395,00 $"}]`), 0o644))

	require.NoError(t, File(src, first, 39, "Québec (QC)"))
	require.NoError(t, File(first, second, 39, "Québec (QC)"))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestFileRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "working.json")
	require.NoError(t, os.WriteFile(src, []byte(`{not json`), 0o644))

	err := File(src, filepath.Join(dir, "out.json"), 39, "Québec (QC)")
	assert.Error(t, err)
}

func fp(v float64) *float64 {
	return &v
}
