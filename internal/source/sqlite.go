package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"gopkg.in/yaml.v3"

	"github.com/softglow/assetdb/internal/asset"
	"github.com/softglow/assetdb/internal/log"
)

// Schema holds the asset tables for a SQLite-backed source. Label
// membership lives in its own table so one asset can carry any number of
// labels.
const Schema = `
CREATE TABLE IF NOT EXISTS assets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS asset_labels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	FOREIGN KEY (asset_id) REFERENCES assets(id)
);

CREATE INDEX IF NOT EXISTS idx_asset_labels_label ON asset_labels(label);
`

// SQLiteSource serves assets stored as (name, kind, body) rows, with body
// holding the YAML spec document. Rows are read and decoded at fetch
// start; delivery still happens on a background goroutine so the loader
// sees the same asynchronous shape as the manifest source.
type SQLiteSource struct {
	db    *sql.DB
	kinds *KindRegistry

	*tracker
}

var _ Source = (*SQLiteSource)(nil)
var _ LabelLister = (*SQLiteSource)(nil)

// OpenSQLiteSource opens (or creates) the database at path and ensures
// the asset schema exists.
func OpenSQLiteSource(path string, kinds *KindRegistry) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open asset database %s: %w", path, err)
	}
	s, err := NewSQLiteSource(db, kinds)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteSource wraps an existing database handle and ensures the asset
// schema exists. The caller keeps ownership of db.
func NewSQLiteSource(db *sql.DB, kinds *KindRegistry) (*SQLiteSource, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("ensure asset schema: %w", err)
	}
	return &SQLiteSource{db: db, kinds: kinds, tracker: newTracker()}, nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error { return s.db.Close() }

// Put inserts or replaces an asset row and its label set. Intended for
// seeding and tests; the registry itself never writes.
func (s *SQLiteSource) Put(ctx context.Context, name, kind, body string, labels ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO assets (name, kind, body) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, body = excluded.body`,
		name, kind, body)
	if err != nil {
		return fmt.Errorf("upsert asset %s: %w", name, err)
	}

	var id int64
	if id, err = res.LastInsertId(); err != nil || id == 0 {
		// Upsert of an existing row does not report an insert id.
		row := tx.QueryRowContext(ctx, `SELECT id FROM assets WHERE name = ?`, name)
		if err := row.Scan(&id); err != nil {
			return fmt.Errorf("resolve asset id for %s: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_labels WHERE asset_id = ?`, id); err != nil {
		return fmt.Errorf("clear labels for %s: %w", name, err)
	}
	for _, l := range labels {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO asset_labels (asset_id, label) VALUES (?, ?)`, id, l); err != nil {
			return fmt.Errorf("label %s for %s: %w", l, name, err)
		}
	}

	return tx.Commit()
}

// FetchByLabel reads and decodes every row tagged with label, then
// delivers the decoded assets asynchronously. Rows that fail to decode
// are dropped with a logged error. A label with no rows completes with
// zero items.
func (s *SQLiteSource) FetchByLabel(ctx context.Context, label string, onItem func(asset.Asset), onDone func()) (Handle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.name, a.kind, a.body
		 FROM assets a
		 JOIN asset_labels al ON al.asset_id = a.id
		 WHERE al.label = ?
		 ORDER BY a.id`, label)
	if err != nil {
		return Handle{}, fmt.Errorf("query assets for label %s: %w", label, err)
	}
	defer func() { _ = rows.Close() }()

	var items []asset.Asset
	for rows.Next() {
		var name, kind, body string
		if err := rows.Scan(&name, &kind, &body); err != nil {
			return Handle{}, fmt.Errorf("scan asset row: %w", err)
		}
		a, err := s.kinds.Decode(kind, func(out any) error {
			return yaml.Unmarshal([]byte(body), out)
		})
		if err != nil {
			s.drop()
			log.ErrorErr(log.CatDB, "asset dropped: decode failed", err,
				"label", label, "name", name, "kind", kind)
			continue
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return Handle{}, fmt.Errorf("iterate assets for label %s: %w", label, err)
	}

	h, f := s.begin(len(items))
	log.Debug(log.CatDB, "sqlite fetch started", "label", label, "handle", h, "rows", len(items))
	deliver(f, items, onItem, onDone)
	return h, nil
}

// WaitForCompletion blocks until the fetch behind h has finished.
func (s *SQLiteSource) WaitForCompletion(h Handle) { s.wait(h) }

// PercentComplete reports fetch progress in [0, 1].
func (s *SQLiteSource) PercentComplete(h Handle) float64 { return s.percent(h) }

// IsValid reports whether h came from this source.
func (s *SQLiteSource) IsValid(h Handle) bool { return s.valid(h) }

// Drops counts assets dropped by decode failures across all fetches.
func (s *SQLiteSource) Drops() int64 { return s.dropped() }

// Labels returns every label present in the database, sorted.
func (s *SQLiteSource) Labels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT label FROM asset_labels ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
