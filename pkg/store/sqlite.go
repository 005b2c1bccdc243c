package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrProductNotFound indicates that no product exists for the given id.
var ErrProductNotFound = errors.New("product not found")

// SQLiteCatalogStore persists the product catalog in SQLite. It is the
// caller-side collaborator for catalog edits (stock changes, imports); the
// recommendation engine itself never touches it. After a write, callers
// rebuild the in-memory Snapshot before the next recommendation call.
type SQLiteCatalogStore struct {
	db *sql.DB
}

// NewSQLiteCatalogStore opens (or creates) a catalog database. The dbPath
// can be a file path or ":memory:" for an in-memory database.
func NewSQLiteCatalogStore(dbPath string) (*SQLiteCatalogStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single connection: SQLite has one writer, and it keeps an in-memory
	// database on the connection that created it.
	db.SetMaxOpenConns(1)

	s := &SQLiteCatalogStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteCatalogStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL COLLATE NOCASE,
		price REAL,
		stock INTEGER NOT NULL DEFAULT 0,
		category TEXT,
		brand TEXT,
		tags_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name COLLATE NOCASE);
	`
	_, err := s.db.Exec(schema)
	return err
}

// DB returns the underlying database connection for advanced operations.
func (s *SQLiteCatalogStore) DB() *sql.DB { return s.db }

// Close releases the database connection.
func (s *SQLiteCatalogStore) Close() error { return s.db.Close() }

// UpsertProduct inserts or replaces a catalog record by id.
func (s *SQLiteCatalogStore) UpsertProduct(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("product id cannot be empty")
	}
	tagsJSON, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	var price sql.NullFloat64
	if rec.Price != nil {
		price = sql.NullFloat64{Float64: *rec.Price, Valid: true}
	}

	query := `
		INSERT OR REPLACE INTO products (id, name, price, stock, category, brand, tags_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, price, rec.Stock, rec.Category, rec.Brand, tagsJSON,
	); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// GetProduct retrieves a catalog record by id.
// Returns ErrProductNotFound when the id is unknown.
func (s *SQLiteCatalogStore) GetProduct(ctx context.Context, id string) (Record, error) {
	query := `
		SELECT id, name, price, stock, category, brand, tags_json
		FROM products
		WHERE id = ?
	`
	rec, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return Record{}, ErrProductNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get product: %w", err)
	}
	return rec, nil
}

// SetStock updates the stock level for a product.
// Returns ErrProductNotFound when the id is unknown.
func (s *SQLiteCatalogStore) SetStock(ctx context.Context, id string, stock int) error {
	result, err := s.db.ExecContext(ctx, "UPDATE products SET stock = ? WHERE id = ?", stock, id)
	if err != nil {
		return fmt.Errorf("failed to set stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Snapshot reads the full catalog into an immutable in-memory Snapshot, in
// insertion order.
func (s *SQLiteCatalogStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	query := `
		SELECT id, name, price, stock, category, brand, tags_json
		FROM products
		ORDER BY rowid
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return NewSnapshot(records), nil
}

// ImportSnapshot upserts every record of a snapshot in one transaction.
func (s *SQLiteCatalogStore) ImportSnapshot(ctx context.Context, snapshot *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO products (id, name, price, stock, category, brand, tags_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare import stmt: %w", err)
	}
	defer stmt.Close()

	for _, rec := range snapshot.Records() {
		tagsJSON, err := json.Marshal(rec.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags for %s: %w", rec.ID, err)
		}
		var price sql.NullFloat64
		if rec.Price != nil {
			price = sql.NullFloat64{Float64: *rec.Price, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Name, price, rec.Stock, rec.Category, rec.Brand, tagsJSON,
		); err != nil {
			return fmt.Errorf("failed to import product %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountProducts returns the number of products in the store.
func (s *SQLiteCatalogStore) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (Record, error) {
	var rec Record
	var price sql.NullFloat64
	var tagsJSON []byte
	if err := row.Scan(&rec.ID, &rec.Name, &price, &rec.Stock, &rec.Category, &rec.Brand, &tagsJSON); err != nil {
		return Record{}, err
	}
	if price.Valid {
		p := price.Float64
		rec.Price = &p
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &rec.Tags); err != nil {
			return Record{}, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return rec, nil
}
