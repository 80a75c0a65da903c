// Package handler implements the HTTP handlers for the Trip Ledger API.
// All handlers are methods on Server; methods are split into resource-specific
// files (health.go, trip.go, tripdata.go) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-ledger/backend/internal/attribution"
	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/migrate"
	"github.com/pkordes/trip-ledger/backend/internal/orphan"
	"github.com/pkordes/trip-ledger/backend/internal/service"
	"github.com/pkordes/trip-ledger/backend/internal/validate"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TripDataServicer defines the dataset operations the trip-data handlers
// depend on: integrity auditing, identifier migration, cost attribution, and
// orphan resolution.
type TripDataServicer interface {
	Report(ctx context.Context, tripID uuid.UUID) (validate.Report, error)
	Migrate(ctx context.Context, tripID uuid.UUID, mode migrate.Mode) (service.MigrationResult, error)
	DestinationCosts(ctx context.Context, tripID uuid.UUID, destinationID string) (attribution.Result, error)
	OrphanProposals(ctx context.Context, tripID uuid.UUID) ([]orphan.Proposal, error)
	ReassignCosts(ctx context.Context, tripID uuid.UUID, costIDs []string, targetDestinationID string) error
	DeleteDestination(ctx context.Context, tripID uuid.UUID, destinationID string, strategy domain.CascadeStrategy, reassignTo string) error
	SaveDestinationCosts(ctx context.Context, tripID uuid.UUID, destinationID string, costs []domain.Cost) error
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips TripServicer
	data  TripDataServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, data TripDataServicer) *Server {
	return &Server{trips: trips, data: data}
}

// Routes mounts every endpoint on the given router. Middleware is the
// caller's concern; main.go stacks it around this.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.Health)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Delete("/", s.DeleteTrip)

			r.Get("/report", s.GetReport)
			r.Post("/migrations", s.RunMigration)

			r.Get("/orphans", s.ListOrphans)
			r.Post("/orphans/reassign", s.ReassignOrphans)

			r.Route("/destinations/{destinationID}", func(r chi.Router) {
				r.Get("/costs", s.GetDestinationCosts)
				r.Put("/costs", s.PutDestinationCosts)
				r.Delete("/", s.DeleteDestination)
			})
		})
	})
}

// tripIDParam parses the {tripID} path parameter. A malformed value writes a
// 400 and returns false; the handler should return immediately.
func tripIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "trip id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
