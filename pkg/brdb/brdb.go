// Package brdb writes a save document as the structured database format: a
// SQLite file holding the save header, asset table, and one row per brick.
package brdb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/brickadia-community/heightmap2brz/pkg/save"
)

// FormatVersion is recorded in the meta table so readers can detect layout
// changes.
const FormatVersion = "1"

//go:embed schema.sql
var schemaSQL string

// Write creates the database at path and stores the complete document in a
// single transaction. Any existing file at path is replaced; the format has
// no append semantics.
func Write(doc *save.Document, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace save database %s: %w", path, err)
	}
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.WriteDocument(doc)
}

// DB is an open structured-database save file.
type DB struct {
	*sql.DB
}

// Open creates (or opens) the database at path and ensures the schema
// exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open save database %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize save schema: %w", err)
	}
	return &DB{db}, nil
}

// WriteDocument stores the document. Everything goes through one
// transaction: on any failure the database is left without a partial save.
func (db *DB) WriteDocument(doc *save.Document) error {
	for i, b := range doc.Bricks {
		if b.Asset < 0 || b.Asset >= len(doc.Assets) {
			return fmt.Errorf("brick %d references asset %d of %d", i, b.Asset, len(doc.Assets))
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	meta := map[string]string{
		"version":     FormatVersion,
		"map":         doc.Map,
		"description": doc.Description,
		"owner_id":    doc.Owner.ID.String(),
		"owner_name":  doc.Owner.Name,
		"created_at":  doc.CreatedAt.Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("write meta %s: %w", k, err)
		}
	}

	for i, name := range doc.Assets {
		if _, err := tx.Exec(`INSERT INTO assets (id, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("write asset %s: %w", name, err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO bricks (asset_id, x, y, z, size_x, size_y, size_z,
			color_r, color_g, color_b, color_a, collision, glow)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare brick insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range doc.Bricks {
		collision := 0
		if b.Collision {
			collision = 1
		}
		_, err := stmt.Exec(b.Asset, b.X, b.Y, b.Z, b.SizeX, b.SizeY, b.SizeZ,
			b.Color.R, b.Color.G, b.Color.B, b.Color.A, collision, b.Glow)
		if err != nil {
			return fmt.Errorf("write brick %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
