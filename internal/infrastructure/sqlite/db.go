// Package sqlite implementa los puertos de persistencia sobre SQLite (driver puro Go
// modernc.org/sqlite) con sqlx. Pensado para una caja sin servidor de base de datos.
//
// Se usa una sola conexión: SQLite serializa escritores y así las transacciones de venta
// se ejecutan una tras otra, equivalente al SELECT FOR UPDATE de PostgreSQL.
package sqlite

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Códigos extendidos de SQLite usados para mapear errores de dominio.
const (
	codeConstraintCheck  = 275  // SQLITE_CONSTRAINT_CHECK
	codeConstraintUnique = 2067 // SQLITE_CONSTRAINT_UNIQUE
)

// Open abre (o crea) la base y aplica el esquema. dsn puede ser una ruta o ":memory:".
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate aplica el esquema embebido (idempotente).
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("esquema sqlite: %w", err)
	}
	return nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == codeConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == codeConstraintCheck
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// ts normaliza a UTC: los DATETIME se comparan como texto.
func ts(t time.Time) time.Time { return t.UTC() }

func tsPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nowUTC() time.Time { return time.Now().UTC() }
