package main

import (
	"database/sql"
	"log"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

var db *sql.DB

// initDB opens the sqlite database and creates the schema. The path
// comes from DB_PATH with a dev default next to the binary.
func initDB() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "opsfolio.db"
	}

	var err error
	db, err = sql.Open("sqlite", path)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}

	if err := createTables(db); err != nil {
		log.Fatal("Failed to create tables:", err)
	}
}

// createTables is separate from initDB so tests can run the schema
// against an in-memory database.
func createTables(conn *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS mode_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS copy_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// recordModeEvent stores one mode selection for the dashboard's
// popularity numbers. Safe to call before initDB (tests, degraded
// startup): it just drops the event.
func recordModeEvent(m Mode) {
	if db == nil {
		return
	}
	_, err := db.Exec(`INSERT INTO mode_events (mode, timestamp) VALUES (?, ?)`, string(m), time.Now())
	if err != nil {
		log.Printf("Error recording mode event: %v", err)
	}
}

// recordCopyEvent counts one terminal copy click.
func recordCopyEvent() {
	if db == nil {
		return
	}
	_, err := db.Exec(`INSERT INTO copy_events (timestamp) VALUES (?)`, time.Now())
	if err != nil {
		log.Printf("Error recording copy event: %v", err)
	}
}
