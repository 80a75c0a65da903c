package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
)

// DatasetRepo defines persistence for a trip's full working set.
//
// Replace is the only way migration results reach the database, and it is
// transactional across all four tables: either every collection is rewritten
// against the same migration map or none is. SaveDestinationCosts is the
// bulk persistence-sink contract — it is keyed by destination id and takes
// the full current cost list for that destination.
type DatasetRepo interface {
	// Load returns the trip's destinations, costs, and legs.
	// Returns domain.ErrNotFound if the trip does not exist.
	Load(ctx context.Context, tripID uuid.UUID) (domain.Dataset, error)

	// Replace atomically overwrites the trip's entire dataset.
	Replace(ctx context.Context, tripID uuid.UUID, ds domain.Dataset) error

	// SaveDestinationCosts overwrites the stored cost list for one
	// destination of the trip with the provided items.
	SaveDestinationCosts(ctx context.Context, tripID uuid.UUID, destinationID string, costs []domain.Cost) error
}

// pgDatasetRepo is the Postgres implementation of DatasetRepo.
type pgDatasetRepo struct {
	db db
}

// NewDatasetRepo constructs a DatasetRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx
// (dataset writes then run in savepoints under it).
func NewDatasetRepo(db db) DatasetRepo {
	return &pgDatasetRepo{db: db}
}

func (r *pgDatasetRepo) Load(ctx context.Context, tripID uuid.UUID) (domain.Dataset, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`,
		pgx.NamedArgs{"id": tripID}).Scan(&exists)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.DatasetRepo.Load: %w", err)
	}
	if !exists {
		return domain.Dataset{}, fmt.Errorf("repo.DatasetRepo.Load: %w", domain.ErrNotFound)
	}

	var ds domain.Dataset
	if ds.Destinations, err = r.loadDestinations(ctx, tripID); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.DatasetRepo.Load: %w", err)
	}
	if ds.Costs, err = r.loadCosts(ctx, tripID); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.DatasetRepo.Load: %w", err)
	}
	if ds.Legs, err = r.loadLegs(ctx, tripID); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.DatasetRepo.Load: %w", err)
	}
	return ds, nil
}

func (r *pgDatasetRepo) Replace(ctx context.Context, tripID uuid.UUID, ds domain.Dataset) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.DatasetRepo.Replace: begin: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	for _, q := range []string{
		`DELETE FROM sub_legs WHERE trip_id = @trip_id`,
		`DELETE FROM legs WHERE trip_id = @trip_id`,
		`DELETE FROM costs WHERE trip_id = @trip_id`,
		`DELETE FROM destinations WHERE trip_id = @trip_id`,
	} {
		if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID}); err != nil {
			return fmt.Errorf("repo.DatasetRepo.Replace: clear: %w", err)
		}
	}

	for _, d := range ds.Destinations {
		if err := insertDestination(ctx, tx, tripID, d); err != nil {
			return fmt.Errorf("repo.DatasetRepo.Replace: %w", err)
		}
	}
	for _, c := range ds.Costs {
		if err := insertCost(ctx, tx, tripID, c); err != nil {
			return fmt.Errorf("repo.DatasetRepo.Replace: %w", err)
		}
	}
	for _, leg := range ds.Legs {
		if err := insertLeg(ctx, tx, tripID, leg); err != nil {
			return fmt.Errorf("repo.DatasetRepo.Replace: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.DatasetRepo.Replace: commit: %w", err)
	}
	return nil
}

func (r *pgDatasetRepo) SaveDestinationCosts(ctx context.Context, tripID uuid.UUID, destinationID string, costs []domain.Cost) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.DatasetRepo.SaveDestinationCosts: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM costs WHERE trip_id = @trip_id AND destination_id = @destination_id`,
		pgx.NamedArgs{"trip_id": tripID, "destination_id": destinationID})
	if err != nil {
		return fmt.Errorf("repo.DatasetRepo.SaveDestinationCosts: clear: %w", err)
	}

	for _, c := range costs {
		c.DestinationID = destinationID // the sink is keyed by destination
		if err := insertCost(ctx, tx, tripID, c); err != nil {
			return fmt.Errorf("repo.DatasetRepo.SaveDestinationCosts: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.DatasetRepo.SaveDestinationCosts: commit: %w", err)
	}
	return nil
}

// ---- destinations ----------------------------------------------------------

func (r *pgDatasetRepo) loadDestinations(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error) {
	const q = `
		SELECT id, name, city, country, duration_days, baseline_duration_days,
		       arrival_date, departure_date, place_id, legacy_id, migrated_at
		FROM destinations
		WHERE trip_id = @trip_id
		ORDER BY arrival_date NULLS LAST, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Destination
	for rows.Next() {
		var (
			d          domain.Destination
			arrival    pgtype.Date
			departure  pgtype.Date
			migratedAt pgtype.Timestamptz
		)
		err := rows.Scan(&d.ID, &d.Name, &d.City, &d.Country,
			&d.DurationDays, &d.BaselineDurationDays,
			&arrival, &departure, &d.PlaceID, &d.LegacyID, &migratedAt)
		if err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		d.ArrivalDate = dateString(arrival)
		d.DepartureDate = dateString(departure)
		if migratedAt.Valid {
			ts := migratedAt.Time
			d.MigratedAt = &ts
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func insertDestination(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, d domain.Destination) error {
	const q = `
		INSERT INTO destinations (trip_id, id, name, city, country,
			duration_days, baseline_duration_days, arrival_date, departure_date,
			place_id, legacy_id, migrated_at)
		VALUES (@trip_id, @id, @name, @city, @country,
			@duration_days, @baseline_duration_days, @arrival_date, @departure_date,
			@place_id, @legacy_id, @migrated_at)`

	_, err := tx.Exec(ctx, q, pgx.NamedArgs{
		"trip_id":                tripID,
		"id":                     d.ID,
		"name":                   d.Name,
		"city":                   d.City,
		"country":                d.Country,
		"duration_days":          d.DurationDays,
		"baseline_duration_days": d.BaselineDurationDays,
		"arrival_date":           dateArg(d.ArrivalDate),
		"departure_date":         dateArg(d.DepartureDate),
		"place_id":               d.PlaceID,
		"legacy_id":              d.LegacyID,
		"migrated_at":            d.MigratedAt,
	})
	if err != nil {
		return fmt.Errorf("insert destination %q: %w", d.ID, err)
	}
	return nil
}

// ---- costs -----------------------------------------------------------------

func (r *pgDatasetRepo) loadCosts(ctx context.Context, tripID uuid.UUID) ([]domain.Cost, error) {
	const q = `
		SELECT id, category, description, notes, amount, currency, amount_usd,
		       destination_id, legacy_destination_id, migrated_at,
		       duration_invariant, scale_with_duration,
		       pricing_model, unit, frequency, daily_rate, ref_style
		FROM costs
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Cost
	for rows.Next() {
		var (
			c          domain.Cost
			category   string
			migratedAt pgtype.Timestamptz
			invariant  pgtype.Bool
			scale      pgtype.Bool
			refStyle   string
		)
		err := rows.Scan(&c.ID, &category, &c.Description, &c.Notes,
			&c.Amount, &c.Currency, &c.AmountUSD,
			&c.DestinationID, &c.LegacyDestinationID, &migratedAt,
			&invariant, &scale,
			&c.PricingModel, &c.Unit, &c.Frequency, &c.DailyRate, &refStyle)
		if err != nil {
			return nil, fmt.Errorf("scan cost: %w", err)
		}
		c.Category = domain.NormalizeCategory(category)
		c.RefStyle = domain.RefStyle(refStyle)
		if migratedAt.Valid {
			ts := migratedAt.Time
			c.MigratedAt = &ts
		}
		if invariant.Valid {
			v := invariant.Bool
			c.DurationInvariant = &v
		}
		if scale.Valid {
			v := scale.Bool
			c.ScaleWithDuration = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertCost(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, c domain.Cost) error {
	const q = `
		INSERT INTO costs (trip_id, id, category, description, notes,
			amount, currency, amount_usd, destination_id, legacy_destination_id,
			migrated_at, duration_invariant, scale_with_duration,
			pricing_model, unit, frequency, daily_rate, ref_style)
		VALUES (@trip_id, @id, @category, @description, @notes,
			@amount, @currency, @amount_usd, @destination_id, @legacy_destination_id,
			@migrated_at, @duration_invariant, @scale_with_duration,
			@pricing_model, @unit, @frequency, @daily_rate, @ref_style)`

	_, err := tx.Exec(ctx, q, pgx.NamedArgs{
		"trip_id":               tripID,
		"id":                    c.ID,
		"category":              string(c.Category),
		"description":           c.Description,
		"notes":                 c.Notes,
		"amount":                c.Amount,
		"currency":              c.Currency,
		"amount_usd":            c.AmountUSD,
		"destination_id":        c.DestinationID,
		"legacy_destination_id": c.LegacyDestinationID,
		"migrated_at":           c.MigratedAt,
		"duration_invariant":    c.DurationInvariant, // nil becomes NULL
		"scale_with_duration":   c.ScaleWithDuration,
		"pricing_model":         c.PricingModel,
		"unit":                  c.Unit,
		"frequency":             c.Frequency,
		"daily_rate":            c.DailyRate,
		"ref_style":             string(c.RefStyle),
	})
	if err != nil {
		return fmt.Errorf("insert cost %q: %w", c.ID, err)
	}
	return nil
}

// ---- legs ------------------------------------------------------------------

func (r *pgDatasetRepo) loadLegs(ctx context.Context, tripID uuid.UUID) ([]domain.Leg, error) {
	const legQ = `
		SELECT id, name, start_date, end_date
		FROM legs
		WHERE trip_id = @trip_id
		ORDER BY start_date NULLS LAST, id`

	rows, err := r.db.Query(ctx, legQ, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []domain.Leg
	index := map[string]int{}
	for rows.Next() {
		var (
			leg   domain.Leg
			start pgtype.Date
			end   pgtype.Date
		)
		if err := rows.Scan(&leg.ID, &leg.Name, &start, &end); err != nil {
			return nil, fmt.Errorf("scan leg: %w", err)
		}
		leg.StartDate = dateString(start)
		leg.EndDate = dateString(end)
		index[leg.ID] = len(legs)
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	const subQ = `
		SELECT leg_id, id, name, destination_ids, legacy_destination_ids
		FROM sub_legs
		WHERE trip_id = @trip_id
		ORDER BY id`

	subRows, err := r.db.Query(ctx, subQ, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		var (
			legID string
			sub   domain.SubLeg
		)
		if err := subRows.Scan(&legID, &sub.ID, &sub.Name, &sub.DestinationIDs, &sub.LegacyDestinationIDs); err != nil {
			return nil, fmt.Errorf("scan sub_leg: %w", err)
		}
		if i, ok := index[legID]; ok {
			legs[i].SubLegs = append(legs[i].SubLegs, sub)
		}
	}
	return legs, subRows.Err()
}

func insertLeg(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, leg domain.Leg) error {
	const q = `
		INSERT INTO legs (trip_id, id, name, start_date, end_date)
		VALUES (@trip_id, @id, @name, @start_date, @end_date)`

	_, err := tx.Exec(ctx, q, pgx.NamedArgs{
		"trip_id":    tripID,
		"id":         leg.ID,
		"name":       leg.Name,
		"start_date": dateArg(leg.StartDate),
		"end_date":   dateArg(leg.EndDate),
	})
	if err != nil {
		return fmt.Errorf("insert leg %q: %w", leg.ID, err)
	}

	const subQ = `
		INSERT INTO sub_legs (trip_id, leg_id, id, name, destination_ids, legacy_destination_ids)
		VALUES (@trip_id, @leg_id, @id, @name, @destination_ids, @legacy_destination_ids)`

	for _, sub := range leg.SubLegs {
		_, err := tx.Exec(ctx, subQ, pgx.NamedArgs{
			"trip_id":                tripID,
			"leg_id":                 leg.ID,
			"id":                     sub.ID,
			"name":                   sub.Name,
			"destination_ids":        sub.DestinationIDs,
			"legacy_destination_ids": sub.LegacyDestinationIDs,
		})
		if err != nil {
			return fmt.Errorf("insert sub_leg %q: %w", sub.ID, err)
		}
	}
	return nil
}

// ---- date mapping ----------------------------------------------------------

// dateArg converts a DateLayout string to a value pgx can bind to a date
// column; empty or malformed strings become NULL.
func dateArg(s string) any {
	if s == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil
	}
	return t
}

// dateString converts a scanned date back to the domain's string form.
func dateString(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(domain.DateLayout)
}
