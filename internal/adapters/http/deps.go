package http

import (
	"github.com/nats-io/nats.go"

	"github.com/aritzolea/peaksight/internal/adapters/postgres"
	"github.com/aritzolea/peaksight/internal/adapters/valkey"
	"github.com/aritzolea/peaksight/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Peaks      *usecases.PeakService
	Visibility *usecases.VisibilityService
	Pairs      *usecases.PairService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
