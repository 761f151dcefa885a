// Package sqlitestore implements objectstore.Store on a local SQLite file.
// Buckets are rows partitioned by name in one table.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.

	"pathsummarizer/internal/objectstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Database struct {
	db  *sql.DB
	now func() time.Time
	log *slog.Logger
}

func New(ctx context.Context, dbPath string, log *slog.Logger) (*Database, error) {
	dbFile, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	dbInstance, err := sqlite3.WithInstance(dbFile, &sqlite3.Config{})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create DB instance: %w", err), dbFile.Close())
	}

	srcInstance, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create source instance: %w", err), dbFile.Close())
	}

	m, err := migrate.NewWithInstance("iofs", srcInstance, "sqlite3", dbInstance)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create migrate instance: %w", err), dbFile.Close())
	}

	migrateErr := m.Up()

	version, dirty, versionErr := m.Version()
	fields := []any{
		"dbPath", dbPath,
	}

	if versionErr == nil {
		fields = append(fields, "version", version, "dirty", dirty)
	} else if !errors.Is(versionErr, migrate.ErrNilVersion) {
		log.WarnContext(ctx, "Failed to fetch migration version",
			"error", versionErr,
			"dbPath", dbPath)
	}

	if migrateErr != nil {
		if !errors.Is(migrateErr, migrate.ErrNoChange) {
			return nil, errors.Join(fmt.Errorf("apply migrations: %w", migrateErr), dbFile.Close())
		}

		log.InfoContext(ctx, "No migrations to apply", fields...)
	} else {
		log.InfoContext(ctx, "DB is migrated", fields...)
	}

	return &Database{db: dbFile, now: time.Now, log: log}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Bucket returns a store scoped to one bucket name.
func (d *Database) Bucket(name string) *Bucket {
	return &Bucket{d: d, name: name}
}

// Expire deletes objects in bucket last written before cutoff and returns
// how many were removed.
func (d *Database) Expire(ctx context.Context, bucket string, cutoff time.Time) (int64, error) {
	query := "delete from objects where bucket = ? and updated_at < ?"

	res, err := d.db.ExecContext(ctx, query, bucket, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired objects: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired objects: %w", err)
	}

	return n, nil
}

type Bucket struct {
	d    *Database
	name string
}

func (b *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	query := "select value from objects where bucket = ? and object_key = ?"

	var value []byte
	err := b.d.db.QueryRowContext(ctx, query, b.name, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, objectstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select object (bucket = %s, key = %s): %w", b.name, key, err)
	}

	return value, nil
}

func (b *Bucket) Put(ctx context.Context, key string, value []byte) error {
	query := `insert into objects (bucket, object_key, value, updated_at)
	values (?, ?, ?, ?)
	on conflict (bucket, object_key) do update
	set value = excluded.value, updated_at = excluded.updated_at`

	if value == nil {
		value = []byte{}
	}

	_, err := b.d.db.ExecContext(ctx, query, b.name, key, value, b.d.now().Unix())
	if err != nil {
		return fmt.Errorf("upsert object (bucket = %s, key = %s): %w", b.name, key, err)
	}

	return nil
}

var _ objectstore.Store = (*Bucket)(nil)
