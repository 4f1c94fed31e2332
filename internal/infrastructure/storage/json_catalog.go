package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/kaptinlin/jsonrepair"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

// JSONCatalog keeps the whole record collection in one JSON array file.
type JSONCatalog struct {
	path   string
	repair bool
	logger *slog.Logger
}

var _ ports.CatalogRepository = (*JSONCatalog)(nil)

// NewJSONCatalog wires the catalog file. With repair enabled, a file that
// fails to decode is passed through jsonrepair once before giving up.
func NewJSONCatalog(path string, repair bool, log *slog.Logger) *JSONCatalog {
	return &JSONCatalog{path: path, repair: repair, logger: log}
}

func (c *JSONCatalog) Path() string {
	return c.path
}

// Load reads every record of the catalog.
func (c *JSONCatalog) Load(ctx context.Context) ([]domain.Fish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var records []domain.Fish
	err = json.Unmarshal(data, &records)
	if err != nil && c.repair {
		c.warn("catalog is not valid json, repairing", "path", c.path, "error", err)
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return nil, fmt.Errorf("repair catalog: %w", repairErr)
		}
		records = nil
		err = json.Unmarshal([]byte(repaired), &records)
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for i := range records {
		if records[i].IncompatibleTags == nil {
			records[i].IncompatibleTags = []string{}
		}
		if records[i].FeaturesList == nil {
			records[i].FeaturesList = []string{}
		}
	}
	return records, nil
}

// Save replaces the catalog with records.
func (c *JSONCatalog) Save(ctx context.Context, records []domain.Fish) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []domain.Fish{}
	}

	data, err := encodeJSON(records)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *JSONCatalog) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
