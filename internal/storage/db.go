// Package storage persists listings, CPI series and retail prices in a
// local sqlite database.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/francescacollu/prison-inflation/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS listings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  year INTEGER NOT NULL,
  category TEXT NOT NULL,
  itemName TEXT NOT NULL,
  size TEXT NOT NULL DEFAULT '',
  priceMin REAL NOT NULL,
  priceMax REAL NOT NULL,
  source TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_listings_year ON listings(year);
CREATE INDEX IF NOT EXISTS idx_listings_item ON listings(itemName, size);

CREATE TABLE IF NOT EXISTS cpi_series (
  cpiType TEXT NOT NULL,
  year INTEGER NOT NULL,
  value REAL NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(cpiType, year)
);

CREATE TABLE IF NOT EXISTS retail_prices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  query TEXT NOT NULL,
  itemName TEXT NOT NULL,
  size TEXT NOT NULL DEFAULT '',
  price REAL NOT NULL,
  unitPrice REAL,
  unit TEXT,
  aisle TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_retail_query ON retail_prices(query);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  command TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceListings swaps out every stored listing for a year/source pair.
// Re-running an ingest for the same price list must not duplicate rows.
func (d *DB) ReplaceListings(year int, source internal.ListingSource, listings []internal.Listing) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM listings WHERE year = ? AND source = ?`, year, string(source)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO listings (year, category, itemName, size, priceMin, priceMax, source)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.Exec(l.Year, l.Category, l.ItemName, l.Size, l.PriceMin, l.PriceMax, string(source)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListListings() ([]internal.Listing, error) {
	rows, err := d.conn.Query(`
SELECT year, category, itemName, size, priceMin, priceMax
FROM listings ORDER BY year, itemName, size`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Listing
	for rows.Next() {
		var l internal.Listing
		if err := rows.Scan(&l.Year, &l.Category, &l.ItemName, &l.Size, &l.PriceMin, &l.PriceMax); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (d *DB) UpsertCPI(observations []internal.CPIObservation) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO cpi_series (cpiType, year, value)
VALUES (?, ?, ?)
ON CONFLICT(cpiType, year) DO UPDATE SET
  value = excluded.value,
  updatedAt = CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range observations {
		if _, err := stmt.Exec(o.CPIType, o.Year, o.Value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCPI() ([]internal.CPIObservation, error) {
	rows, err := d.conn.Query(`SELECT cpiType, year, value FROM cpi_series ORDER BY cpiType, year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CPIObservation
	for rows.Next() {
		var o internal.CPIObservation
		if err := rows.Scan(&o.CPIType, &o.Year, &o.Value); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ReplaceRetailPrices swaps out every stored product for a query.
func (d *DB) ReplaceRetailPrices(query string, prices []internal.RetailPrice) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM retail_prices WHERE query = ?`, query); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO retail_prices (query, itemName, size, price, unitPrice, unit, aisle)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(p.Query, p.ItemName, p.Size, p.Price, p.UnitPrice, p.Unit, p.Aisle); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRetailPrices(query string) ([]internal.RetailPrice, error) {
	return d.queryRetailPrices(`
SELECT query, itemName, size, price, unitPrice, unit, aisle
FROM retail_prices WHERE query = ? ORDER BY itemName, size`, query)
}

// ListAllRetailPrices returns every stored product across all queries.
func (d *DB) ListAllRetailPrices() ([]internal.RetailPrice, error) {
	return d.queryRetailPrices(`
SELECT query, itemName, size, price, unitPrice, unit, aisle
FROM retail_prices ORDER BY query, itemName, size`)
}

func (d *DB) queryRetailPrices(query string, args ...any) ([]internal.RetailPrice, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RetailPrice
	for rows.Next() {
		var p internal.RetailPrice
		if err := rows.Scan(&p.Query, &p.ItemName, &p.Size, &p.Price, &p.UnitPrice, &p.Unit, &p.Aisle); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertRun records per-command audit counters (rows read, kept, dropped).
func (d *DB) InsertRun(command string, counts map[string]int) error {
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (command, countsJson) VALUES (?, ?)`, command, string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
