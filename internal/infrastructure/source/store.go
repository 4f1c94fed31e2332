package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/infrastructure/storage"
	"AquaScanner/internal/ports"
)

// BackupSuffix is appended to the file name of the pre-write copy.
const BackupSuffix = ".backup"

// FileStore reads and rewrites the generated source file on disk.
type FileStore struct {
	path      string
	arrayName string
	logger    *slog.Logger
}

var _ ports.SourceStore = (*FileStore)(nil)

func NewFileStore(path, arrayName string, log *slog.Logger) *FileStore {
	if arrayName == "" {
		arrayName = DefaultArrayName
	}
	return &FileStore{path: path, arrayName: arrayName, logger: log}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*domain.SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	doc, err := Parse(string(content), s.arrayName)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return doc, nil
}

// Save copies the current file to the backup path and then replaces it.
func (s *FileStore) Save(ctx context.Context, doc *domain.SourceDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	current, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	backup := s.path + BackupSuffix
	if err := storage.WriteFileAtomic(backup, current, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("source backup written", "path", backup)
	}

	if err := storage.WriteFileAtomic(s.path, []byte(Format(doc)), 0o644); err != nil {
		return fmt.Errorf("write source file: %w", err)
	}
	return nil
}
