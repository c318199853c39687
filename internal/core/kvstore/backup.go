package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/result"
)

// Backup is the document produced by Export and consumed by Import.
type Backup struct {
	ExportID   string       `json:"exportId,omitempty"`
	ExportDate time.Time    `json:"exportDate"`
	TotalItems int          `json:"totalItems"`
	TotalSize  int64        `json:"totalSize"`
	Items      []BackupItem `json:"items"`
}

// BackupItem is a single exported item.
type BackupItem struct {
	Key          string          `json:"key"`
	Value        json.RawMessage `json:"value"`
	Size         int64           `json:"size"`
	LastModified time.Time       `json:"lastModified"`
}

// ImportOptions controls Import.
type ImportOptions struct {
	// ClearExisting removes every namespaced key before importing.
	ClearExisting bool
}

// Stats summarizes the namespace.
type Stats struct {
	TotalItems      int        `json:"totalItems"`
	TotalSize       int64      `json:"totalSize"`
	AverageItemSize int64      `json:"averageItemSize"`
	OldestItem      *time.Time `json:"oldestItem,omitempty"`
	NewestItem      *time.Time `json:"newestItem,omitempty"`
	Info            Info       `json:"info"`
}

// Export serializes every namespaced item into an indented backup document.
func (s *Store) Export(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.allItems(ctx)
	if err != nil {
		return "", fmt.Errorf("list items: %w", err)
	}

	doc := Backup{
		ExportID:   uuid.NewString(),
		ExportDate: s.now(),
		TotalItems: len(items),
		Items:      make([]BackupItem, 0, len(items)),
	}
	for _, it := range items {
		doc.TotalSize += it.Size
		doc.Items = append(doc.Items, BackupItem{
			Key:          it.Key,
			Value:        it.Value,
			Size:         it.Size,
			LastModified: it.LastModified,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return string(out), nil
}

type importDoc struct {
	Items *[]json.RawMessage `json:"items"`
}

type importItem struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Import stores every item of a backup document through Set. The document
// must carry an items array. Entries without a key or value, and entries Set
// refuses, are skipped and listed in the result's Errors.
func (s *Store) Import(ctx context.Context, doc string, opts ImportOptions) result.ImportResult {
	var parsed importDoc
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil || parsed.Items == nil {
		return result.ImportResult{Result: result.Fail(result.CodeInvalidInput, s.printer.T(i18n.StorageImportBad))}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.ClearExisting {
		if res := s.clearAll(ctx); !res.Success {
			return result.ImportResult{Result: result.Fail(res.Code, s.printer.T(i18n.StorageImportFailed))}
		}
	}

	var (
		imported int
		errs     []string
	)
	for i, raw := range *parsed.Items {
		var it importItem
		if err := json.Unmarshal(raw, &it); err != nil {
			errs = append(errs, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		if it.Key == "" || len(it.Value) == 0 || string(it.Value) == "null" {
			errs = append(errs, fmt.Sprintf("item %d: missing key or value", i))
			continue
		}

		res := s.set(ctx, it.Key, it.Value)
		if !res.Success {
			if res.Code == result.CodeStorageUnavailable {
				return result.ImportResult{Result: res, ImportedCount: imported, Errors: errs}
			}
			errs = append(errs, fmt.Sprintf("item %d (%s): %s", i, it.Key, res.Message))
			continue
		}
		imported++
	}

	return result.ImportResult{
		Result:        result.OK(s.printer.T(i18n.StorageImported, imported)),
		ImportedCount: imported,
		Errors:        errs,
	}
}

// Stats summarizes item counts, sizes and age range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.allItems(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list items: %w", err)
	}
	info, err := s.info(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("compute usage: %w", err)
	}

	st := Stats{TotalItems: len(items), Info: info}
	for _, it := range items {
		st.TotalSize += it.Size
		lm := it.LastModified
		if st.OldestItem == nil || lm.Before(*st.OldestItem) {
			st.OldestItem = &lm
		}
		if st.NewestItem == nil || lm.After(*st.NewestItem) {
			st.NewestItem = &lm
		}
	}
	if st.TotalItems > 0 {
		st.AverageItemSize = int64(math.Round(float64(st.TotalSize) / float64(st.TotalItems)))
	}
	return st, nil
}
