package app

import (
	"encoding/csv"
	"io"

	"quiz-results-service/internal/domain"
)

// WriteCSV dumps cache entries as CSV. The header is the key list of the
// first entry; each entry contributes one row of values in header order.
func WriteCSV(w io.Writer, entries []domain.CacheEntry) error {
	if len(entries) == 0 {
		return domain.ErrCacheNotFound
	}
	header := entries[0].Keys()

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, entry := range entries {
		for i, key := range header {
			row[i] = entry.Text(key)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
