/*
Package sqlite3adapter provides an implementation of the Adapter
interface in the sqlstore package that works over an SQLite3 database
file.
*/
package sqlite3adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/corels/corels/rule/sqlstore"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

const ruleTableCreateStmt = `CREATE TABLE IF NOT EXISTS rules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	position INTEGER NOT NULL,
	features TEXT NOT NULL,
	bits TEXT NOT NULL,
	UNIQUE (kind, position))`

// MaxRowInsertionsPerStatement is the maximum number of rule rows
// added with a single insert command by AddRows. Larger batches are
// split into multiple commands.
const MaxRowInsertionsPerStatement = 50

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and returns an Adapter
that works on the file's database or an error if it fails to open as an
sqlite3 database.
*/
func New(path string, maxConns int) (sqlstore.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	return &adapter{db}, nil
}

func (a *adapter) CreateRuleTable(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, ruleTableCreateStmt)
	if err != nil {
		return fmt.Errorf("running rules table creation statement: %v", err)
	}
	return nil
}

func (a *adapter) DeleteRows(ctx context.Context, kind string) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM rules WHERE kind = ?`, kind)
	if err != nil {
		return fmt.Errorf("deleting %s rows: %v", kind, err)
	}
	return nil
}

func (a *adapter) AddRows(ctx context.Context, rows []sqlstore.Row) error {
	for len(rows) > 0 {
		batch := rows
		if len(batch) > MaxRowInsertionsPerStatement {
			batch = rows[:MaxRowInsertionsPerStatement]
		}
		rows = rows[len(batch):]
		stmt := `INSERT INTO rules (kind, position, features, bits) VALUES `
		args := make([]interface{}, 0, 4*len(batch))
		for i, row := range batch {
			if i > 0 {
				stmt += ", "
			}
			stmt += `(?, ?, ?, ?)`
			args = append(args, row.Kind, row.Position, row.Features, row.Bits)
		}
		if _, err := a.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("inserting rule rows: %v", err)
		}
	}
	return nil
}

func (a *adapter) ListRows(ctx context.Context, kind string) ([]sqlstore.Row, error) {
	result, err := a.db.QueryContext(ctx, `SELECT kind, position, features, bits FROM rules WHERE kind = ? ORDER BY position`, kind)
	if err != nil {
		return nil, fmt.Errorf("querying %s rows: %v", kind, err)
	}
	defer result.Close()
	var rows []sqlstore.Row
	for result.Next() {
		var row sqlstore.Row
		if err := result.Scan(&row.Kind, &row.Position, &row.Features, &row.Bits); err != nil {
			return nil, fmt.Errorf("scanning %s row: %v", kind, err)
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterating over %s rows: %v", kind, err)
	}
	return rows, nil
}
