// Package aggregator derives the stable file names, slugs and display labels
// of the published per-store files and writes the top-level catalog index.
package aggregator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"obedard/liquidationworker/helpers"
	cerrors "obedard/liquidationworker/pkg/errors"
)

// StoreIndexEntry is one line of the catalog index, derived per store
type StoreIndexEntry struct {
	StoreID  int    `json:"storeId"`
	CitySlug string `json:"citySlug"`
	Province string `json:"province"`
	Label    string `json:"label"`
	FilePath string `json:"filePath"`
}

// FormatLabel derives the display label of a store. An explicit configured
// label wins verbatim (trimmed); otherwise the city with the province in
// parentheses; a store without a usable city falls back to "Store {id}".
func FormatLabel(storeID int, city, province, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return strings.TrimSpace(explicit)
	}
	cityClean := helpers.CollapseSpace(city)
	suffix := ""
	if province != "" {
		suffix = fmt.Sprintf(" (%s)", province)
	}
	if cityClean != "" {
		return cityClean + suffix
	}
	return strings.TrimSpace(fmt.Sprintf("Store %d", storeID) + suffix)
}

// FileBase derives the stable published file name (without extension) for one
// store and category.
func FileBase(storeID int, citySlug, provinceSlug, category string) string {
	return fmt.Sprintf("%04d-%s-%s_%s_liquidation", storeID, citySlug, provinceSlug, category)
}

// Entry builds the index entry for one store. The file path is rooted at the
// public base so consumers resolve it against the published directory.
func Entry(storeID int, city, province, explicit, category, publicBase string) StoreIndexEntry {
	citySlug := helpers.Slugify(city)
	base := FileBase(storeID, citySlug, helpers.Slugify(province), category)
	return StoreIndexEntry{
		StoreID:  storeID,
		CitySlug: citySlug,
		Province: province,
		Label:    FormatLabel(storeID, city, province, explicit),
		FilePath: "/" + strings.Trim(publicBase, "/") + "/" + base + ".json",
	}
}

// WriteIndex writes the ordered catalog index, one entry per configured
// store, once at the end of a run.
func WriteIndex(path string, entries []StoreIndexEntry) error {
	if entries == nil {
		entries = []StoreIndexEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return cerrors.NewExport(path, "failed to encode catalog index", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cerrors.NewExport(path, "failed to create index directory", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return cerrors.NewExport(path, "failed to write catalog index", err)
	}
	return nil
}
