package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

const fishTable = "fish"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS fish (
	id INTEGER PRIMARY KEY,
	name_ru TEXT NOT NULL,
	name_lat TEXT NOT NULL,
	type TEXT NOT NULL,
	family_group TEXT NOT NULL,
	size_cm REAL,
	min_tank_liters INTEGER,
	bio_load_points INTEGER NOT NULL,
	temperament TEXT NOT NULL,
	min_group_size INTEGER NOT NULL,
	difficulty INTEGER NOT NULL,
	ph_min REAL,
	ph_max REAL,
	temp_min REAL,
	temp_max REAL,
	incompatible_tags TEXT NOT NULL,
	description_short TEXT NOT NULL,
	features_list TEXT NOT NULL,
	image_url TEXT NOT NULL,
	article_url TEXT NOT NULL
)`

var fishColumns = []string{
	"id", "name_ru", "name_lat", "type", "family_group", "size_cm", "min_tank_liters",
	"bio_load_points", "temperament", "min_group_size", "difficulty",
	"ph_min", "ph_max", "temp_min", "temp_max",
	"incompatible_tags", "description_short", "features_list", "image_url", "article_url",
}

// ErrRecordNotFound is returned by Get for an unknown id.
var ErrRecordNotFound = errors.New("record not found")

// SQLiteMirror keeps a queryable copy of the catalog. The JSON file stays
// the source of truth; the mirror is rebuilt from it in one transaction.
type SQLiteMirror struct {
	db *sql.DB
}

var _ ports.CatalogMirror = (*SQLiteMirror)(nil)

// OpenSQLiteMirror opens or creates the database at path.
func OpenSQLiteMirror(ctx context.Context, path string) (*SQLiteMirror, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteMirror{db: db}, nil
}

func (m *SQLiteMirror) Close() error {
	return m.db.Close()
}

// Replace swaps the mirrored rows for records.
func (m *SQLiteMirror) Replace(ctx context.Context, records []domain.Fish) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = sq.Delete(fishTable).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}

	for _, f := range records {
		values, encErr := rowValues(f)
		if encErr != nil {
			err = fmt.Errorf("encode record %d: %w", f.ID, encErr)
			return err
		}
		if _, err = sq.Insert(fishTable).Columns(fishColumns...).Values(values...).RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert record %d: %w", f.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror: %w", err)
	}
	return nil
}

// Count returns the number of mirrored records.
func (m *SQLiteMirror) Count(ctx context.Context) (int, error) {
	var n int
	err := sq.Select("COUNT(*)").From(fishTable).RunWith(m.db).QueryRowContext(ctx).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Get reads one mirrored record.
func (m *SQLiteMirror) Get(ctx context.Context, id int) (domain.Fish, error) {
	var (
		f                  domain.Fish
		tags, features     string
		habitat, character string
	)
	err := sq.Select(fishColumns...).From(fishTable).Where(sq.Eq{"id": id}).
		RunWith(m.db).QueryRowContext(ctx).
		Scan(
			&f.ID, &f.NameRU, &f.NameLat, &habitat, &f.FamilyGroup, &f.SizeCm, &f.MinTankLiters,
			&f.BioLoadPoints, &character, &f.MinGroupSize, &f.Difficulty,
			&f.WaterParams.PHMin, &f.WaterParams.PHMax, &f.WaterParams.TempMin, &f.WaterParams.TempMax,
			&tags, &f.DescriptionShort, &features, &f.ImageURL, &f.ArticleURL,
		)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Fish{}, fmt.Errorf("record %d: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return domain.Fish{}, fmt.Errorf("get record %d: %w", id, err)
	}

	f.Type = domain.Habitat(habitat)
	f.Temperament = domain.Temperament(character)
	if err := json.Unmarshal([]byte(tags), &f.IncompatibleTags); err != nil {
		return domain.Fish{}, fmt.Errorf("decode tags of %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(features), &f.FeaturesList); err != nil {
		return domain.Fish{}, fmt.Errorf("decode features of %d: %w", id, err)
	}
	return f, nil
}

func rowValues(f domain.Fish) ([]interface{}, error) {
	tags, err := json.Marshal(nonNil(f.IncompatibleTags))
	if err != nil {
		return nil, err
	}
	features, err := json.Marshal(nonNil(f.FeaturesList))
	if err != nil {
		return nil, err
	}
	return []interface{}{
		f.ID, f.NameRU, f.NameLat, string(f.Type), f.FamilyGroup, f.SizeCm, f.MinTankLiters,
		f.BioLoadPoints, string(f.Temperament), f.MinGroupSize, f.Difficulty,
		f.WaterParams.PHMin, f.WaterParams.PHMax, f.WaterParams.TempMin, f.WaterParams.TempMax,
		string(tags), f.DescriptionShort, string(features), f.ImageURL, f.ArticleURL,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
