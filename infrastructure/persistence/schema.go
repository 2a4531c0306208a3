package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var requiredTables = []string{"users", "social_credentials", "scheduled_posts"}

// VerifySchema checks once at startup that every required table exists and
// fails fast otherwise. Schema presence is a startup invariant, not something
// checked per request; migrations run out of band.
func VerifySchema(db *sql.DB, vendor string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var missing []string
	for _, table := range requiredTables {
		exists, err := tableExists(ctx, db, vendor, table)
		if err != nil {
			return fmt.Errorf("checking table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing tables: %s (run migrations)", strings.Join(missing, ", "))
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, vendor, table string) (bool, error) {
	var q string
	var args []interface{}
	if vendor == "mssql" {
		q = `SELECT 1 FROM information_schema.tables WHERE table_name=@p1`
		args = []interface{}{table}
	} else {
		q = `SELECT 1 FROM information_schema.tables WHERE table_name=$1`
		args = []interface{}{table}
	}
	row := db.QueryRowContext(ctx, q, args...)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
