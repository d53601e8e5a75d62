// Package server HTTP API handlers.
package server

import (
	"database/sql"
	"time"

	"github.com/AlbertLei-Web3/AlphaRadar/capture"
	"github.com/AlbertLei-Web3/AlphaRadar/config"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	db        *sql.DB
	cfg       *config.Config
	bus       *capture.Broadcaster
	startedAt time.Time
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(db *sql.DB, cfg *config.Config, bus *capture.Broadcaster) *Handlers {
	return &Handlers{
		db:        db,
		cfg:       cfg,
		bus:       bus,
		startedAt: time.Now().UTC(),
	}
}
