// Package repository contains the Postgres persistence layer. Queries
// use positional parameters through sqlx; callers translate
// sql.ErrNoRows into domain errors.
package repository

import (
	"database/sql"
	"fmt"
)

// requireRowAffected maps a zero-row UPDATE or DELETE to sql.ErrNoRows
// so services can surface a uniform not-found.
func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
