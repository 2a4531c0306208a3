package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"social-scheduler/infrastructure/configuration"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens the default relational store.
func NewPostgreSQLDB(cfg configuration.Db) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
