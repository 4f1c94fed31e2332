package storage

import (
	"context"
	"fmt"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

// JSONReportWriter stores sync reports as indented JSON.
type JSONReportWriter struct {
	path string
}

var _ ports.ReportWriter = (*JSONReportWriter)(nil)

func NewJSONReportWriter(path string) *JSONReportWriter {
	return &JSONReportWriter{path: path}
}

func (w *JSONReportWriter) WriteReport(ctx context.Context, report domain.SyncReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeJSON(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := WriteFileAtomic(w.path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
