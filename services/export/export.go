// Package export writes the per-store output artifacts: a tabular CSV with a
// fixed human-readable column order and a structured JSON export. Files are
// whole-file rewrites; there are no append semantics.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"obedard/liquidationworker/internal/crawler"
	cerrors "obedard/liquidationworker/pkg/errors"
)

// Header is the fixed CSV column order of the tabular export
var Header = []string{"Nom", "Image", "Prix original", "Prix réduit", "% rabais", "Disponibilité", "Lien", "SKU"}

// WriteCSV rewrites the tabular export for one store
func WriteCSV(path string, records []crawler.ProductRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return cerrors.NewExport(path, "failed to create csv file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return cerrors.NewExport(path, "failed to write csv header", err)
	}
	for _, r := range records {
		row := []string{
			r.Name,
			strValue(r.Image),
			numValue(r.PriceRegular),
			numValue(r.PriceSale),
			numValue(r.DiscountPct),
			string(r.Availability),
			r.URL,
			strValue(r.SKU),
		}
		if err := w.Write(row); err != nil {
			return cerrors.NewExport(path, "failed to write csv record", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return cerrors.NewExport(path, "failed to flush csv records", err)
	}
	return nil
}

// WriteJSON rewrites the structured export for one store as a bare list of
// record objects.
func WriteJSON(path string, records []crawler.ProductRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	if records == nil {
		records = []crawler.ProductRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return cerrors.NewExport(path, "failed to encode json records", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return cerrors.NewExport(path, "failed to write json file", err)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cerrors.NewExport(dir, "failed to create directory", err)
	}
	return nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func numValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
