package database

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DumpSQLite writes the database at path as a SQL script: schema statements
// from sqlite_master, then one INSERT per row, wrapped in a transaction.
// The output restores cleanly through RestoreSQLite.
func DumpSQLite(path string, w io.Writer) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("database file not found: %s", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := fmt.Fprintln(w, "BEGIN TRANSACTION;"); err != nil {
		return err
	}

	tables, err := schemaObjects(db, "table")
	if err != nil {
		return err
	}
	for _, obj := range tables {
		if _, err := fmt.Fprintf(w, "%s;\n", obj.sql); err != nil {
			return err
		}
		if err := dumpRows(db, obj.name, w); err != nil {
			return fmt.Errorf("dump rows of %s: %w", obj.name, err)
		}
	}

	indexes, err := schemaObjects(db, "index")
	if err != nil {
		return err
	}
	for _, obj := range indexes {
		if _, err := fmt.Fprintf(w, "%s;\n", obj.sql); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(w, "COMMIT;")
	return err
}

// RestoreSQLite replaces the database at path with the contents of the SQL
// script. The existing file, if any, is removed first.
func RestoreSQLite(path string, script string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(script); err != nil {
		return fmt.Errorf("execute restore script: %w", err)
	}
	return nil
}

type schemaObject struct {
	name string
	sql  string
}

func schemaObjects(db *sql.DB, objType string) ([]schemaObject, error) {
	rows, err := db.Query(
		`SELECT name, sql FROM sqlite_master
		 WHERE type = ? AND sql IS NOT NULL AND name NOT LIKE 'sqlite_%'
		 ORDER BY rowid`, objType)
	if err != nil {
		return nil, fmt.Errorf("read sqlite_master: %w", err)
	}
	defer rows.Close()

	var objs []schemaObject
	for rows.Next() {
		var obj schemaObject
		if err := rows.Scan(&obj.name, &obj.sql); err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, rows.Err()
}

func dumpRows(db *sql.DB, table string, w io.Writer) error {
	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM "%s"`, table))
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO \"%s\" VALUES(%s);\n",
			table, strings.Join(literals, ",")); err != nil {
			return err
		}
	}
	return rows.Err()
}

func sqlLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.999999999-07:00") + "'"
	case []byte:
		return "X'" + hex.EncodeToString(val) + "'"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(val), "'", "''") + "'"
	}
}
