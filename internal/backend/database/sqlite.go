package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const photoColumns = "id, date, type, weight, notes, filename, file_data, created_at"

// sqliteTimeLayout is fixed width so TEXT columns sort chronologically.
// Unlike UnixNano it covers every year a four digit timestamp can name.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
	now              func() time.Time
}

func NewSQLiteDatabase(connectionString string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every connection to ":memory:" opens its own empty database
	if strings.Contains(connectionString, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
		now:              time.Now,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		date INTEGER NOT NULL,
		type TEXT NOT NULL,
		weight REAL,
		notes TEXT,
		filename TEXT NOT NULL,
		file_data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_photos_date ON photos (date)`)
	return err
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// the file is created on connect, so a successful ping is enough
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) ListPhotos(ctx context.Context) ([]*Photo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+photoColumns+" FROM photos ORDER BY date DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	photos := make([]*Photo, 0)
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (s *SQLiteDatabase) GetPhoto(ctx context.Context, id string) (*Photo, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+photoColumns+" FROM photos WHERE id = ?", id)
	photo, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	return photo, err
}

func (s *SQLiteDatabase) CreatePhoto(ctx context.Context, input NewPhoto) (*Photo, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	photo := newPhotoRecord(id, input, s.now())

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO photos ("+photoColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		photo.ID, formatSQLiteTime(photo.Date), string(photo.Type), nullFloat(photo.Weight), nullString(photo.Notes),
		photo.Filename, photo.FileData, formatSQLiteTime(photo.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert photo: %w", err)
	}
	return photo, nil
}

func (s *SQLiteDatabase) UpdatePhoto(ctx context.Context, id string, update PhotoUpdate) (*Photo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback() // no-op after a successful commit
	}()

	photo, err := scanPhoto(tx.QueryRowContext(ctx, "SELECT "+photoColumns+" FROM photos WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return photo, nil
	}

	update.applyTo(photo)
	_, err = tx.ExecContext(ctx,
		"UPDATE photos SET date = ?, type = ?, weight = ?, notes = ?, filename = ?, file_data = ? WHERE id = ?",
		formatSQLiteTime(photo.Date), string(photo.Type), nullFloat(photo.Weight), nullString(photo.Notes),
		photo.Filename, photo.FileData, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update photo %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *SQLiteDatabase) DeletePhoto(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*Photo, error) {
	var (
		photo     Photo
		photoType string
		date      string
		createdAt string
		weight    sql.NullFloat64
		notes     sql.NullString
	)
	if err := row.Scan(&photo.ID, &date, &photoType, &weight, &notes, &photo.Filename, &photo.FileData, &createdAt); err != nil {
		return nil, err
	}
	photo.Type = PhotoType(photoType)
	var err error
	if photo.Date, err = parseSQLiteTime(date); err != nil {
		return nil, fmt.Errorf("invalid date of photo %s: %w", photo.ID, err)
	}
	if photo.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at of photo %s: %w", photo.ID, err)
	}
	if weight.Valid {
		photo.Weight = &weight.Float64
	}
	if notes.Valid {
		photo.Notes = &notes.String
	}
	return &photo, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(value string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, value)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
