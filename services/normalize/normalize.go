// Package normalize rewrites heterogeneous per-store records into one
// canonical shape. Numeric-looking strings are coerced to numbers and every
// canonical field is exposed under both the underscore and the camelCase key
// family, so downstream consumers following either convention read it without
// transformation. Normalization is idempotent: applying it twice yields
// byte-identical output.
package normalize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cerrors "obedard/liquidationworker/pkg/errors"
)

// canonical maps one logical field to the keys it may arrive under; the first
// two entries are also the keys written back out.
var canonical = []struct {
	snake string
	camel string
	alts  []string
}{
	{"price_regular", "priceRegular", []string{"regular_price"}},
	{"price_sale", "priceSale", []string{"sale_price"}},
	{"discount_pct", "discountPercent", []string{"discount_percent"}},
}

// ToNumber coerces a numeric-looking value to a number, tolerating currency
// and percent decoration and comma decimals. Unparseable or empty input
// becomes nil. Applying it to an already-numeric value is a no-op.
func ToNumber(v interface{}) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		cleaned := strings.TrimSpace(n)
		cleaned = strings.ReplaceAll(cleaned, "$", "")
		cleaned = strings.ReplaceAll(cleaned, "%", "")
		cleaned = strings.ReplaceAll(cleaned, " ", "")
		cleaned = strings.ReplaceAll(cleaned, " ", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		if cleaned == "" {
			return nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// Item normalizes one record map and stamps the store identity onto it. The
// input map is never mutated.
func Item(item map[string]interface{}, storeID int, storeLabel string) map[string]interface{} {
	out := make(map[string]interface{}, len(item)+12)
	for k, v := range item {
		out[k] = v
	}

	for _, field := range canonical {
		keys := append([]string{field.snake, field.camel}, field.alts...)
		num := ToNumber(first(item, keys))
		out[field.snake] = numValue(num)
		out[field.camel] = numValue(num)
	}

	stockText := first(item, []string{"stock_text", "stockText"})
	out["stock_text"] = stockText
	out["stockText"] = stockText

	out["store_id"] = storeID
	out["storeId"] = storeID
	out["store_label"] = storeLabel
	out["storeLabel"] = storeLabel

	return out
}

// File reads a structured per-store export (either a bare record list or an
// object carrying an items list plus pass-through metadata), normalizes every
// record, and writes the published file.
func File(src, dst string, storeID int, storeLabel string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return cerrors.NewExport(src, "failed to read structured export", err)
	}

	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return cerrors.NewExport(src, "invalid structured export", err)
	}

	var items []interface{}
	var wrapper map[string]interface{}
	switch p := payload.(type) {
	case []interface{}:
		items = p
	case map[string]interface{}:
		wrapper = p
		items, _ = p["items"].([]interface{})
	}

	normalized := make([]interface{}, 0, len(items))
	for _, raw := range items {
		if item, ok := raw.(map[string]interface{}); ok {
			normalized = append(normalized, Item(item, storeID, storeLabel))
		} else {
			normalized = append(normalized, raw)
		}
	}

	var outPayload interface{}
	if wrapper != nil {
		outWrapper := make(map[string]interface{}, len(wrapper))
		for k, v := range wrapper {
			outWrapper[k] = v
		}
		outWrapper["items"] = normalized
		outPayload = outWrapper
	} else {
		outPayload = normalized
	}

	out, err := json.MarshalIndent(outPayload, "", "  ")
	if err != nil {
		return cerrors.NewExport(dst, "failed to encode published file", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return cerrors.NewExport(dst, "failed to create published directory", err)
	}
	if err := os.WriteFile(dst, append(out, '\n'), 0o644); err != nil {
		return cerrors.NewExport(dst, "failed to write published file", err)
	}
	return nil
}

func first(item map[string]interface{}, keys []string) interface{} {
	for _, key := range keys {
		if v, ok := item[key]; ok {
			return v
		}
	}
	return nil
}

func numValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
