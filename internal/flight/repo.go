package flight

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type Repo interface {
	// FindAvailable returns active flights with free seats departing in [from, to).
	FindAvailable(ctx context.Context, origin, destination string, from, to time.Time) ([]Flight, error)
	FindByID(ctx context.Context, id int64) (*Flight, error)
	Exists(ctx context.Context, flightNumber string, departure time.Time) (bool, error)
	Create(ctx context.Context, f *Flight) error
	Update(ctx context.Context, f *Flight) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q ListQuery) ([]Flight, int64, error)
	DistinctOrigins(ctx context.Context) ([]string, error)
	DistinctDestinations(ctx context.Context) ([]string, error)
	DistinctLocations(ctx context.Context) ([]string, error)
	Upcoming(ctx context.Context, from time.Time, limit int) ([]Flight, error)
}

type flightRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewFlightRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &flightRepo{
		db:     db,
		logger: logger,
	}
}

const (
	selectFlightColumns = `id, flight_number, airline, origin, destination, departure_time, arrival_time,
						duration, price, aircraft_type, available_seats, cabin_class, active, created_at, updated_at`

	findAvailableQuery = `
						SELECT ` + selectFlightColumns + `
						FROM flights
						WHERE origin = $1 AND destination = $2
						  AND departure_time >= $3 AND departure_time < $4
						  AND active = TRUE AND available_seats > 0
						ORDER BY departure_time
						`
	findByIDQuery = `
						SELECT ` + selectFlightColumns + `
						FROM flights
						WHERE id = $1
						`
	existsQuery = `
						SELECT EXISTS (
							SELECT 1 FROM flights WHERE flight_number = $1 AND departure_time = $2
						)
						`
	insertFlightQuery = `
						INSERT INTO flights (flight_number, airline, origin, destination, departure_time, arrival_time,
						                     duration, price, aircraft_type, available_seats, cabin_class, active)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
						RETURNING id, created_at, updated_at
						`
	updateFlightQuery = `
						UPDATE flights
						SET flight_number = $2, airline = $3, origin = $4, destination = $5, departure_time = $6,
						    arrival_time = $7, duration = $8, price = $9, aircraft_type = $10, available_seats = $11,
						    cabin_class = $12, active = $13, updated_at = $14
						WHERE id = $1
						`
	deleteFlightQuery = `
						DELETE FROM flights WHERE id = $1
						`
	countFlightsQuery = `
						SELECT COUNT(*) FROM flights
						`
	listFlightsQuery = `
						SELECT ` + selectFlightColumns + `
						FROM flights
						ORDER BY %s %s, id
						LIMIT $1 OFFSET $2
						`
	distinctOriginsQuery = `
						SELECT DISTINCT origin FROM flights WHERE active = TRUE ORDER BY origin
						`
	distinctDestinationsQuery = `
						SELECT DISTINCT destination FROM flights WHERE active = TRUE ORDER BY destination
						`
	distinctLocationsQuery = `
						SELECT origin FROM flights WHERE active = TRUE
						UNION
						SELECT destination FROM flights WHERE active = TRUE
						ORDER BY 1
						`
	upcomingQuery = `
						SELECT ` + selectFlightColumns + `
						FROM flights
						WHERE departure_time >= $1 AND active = TRUE
						ORDER BY departure_time
						LIMIT $2
						`
)

// sortColumns whitelists the ORDER BY targets of List.
var sortColumns = map[string]string{
	"id":             "id",
	"flightNumber":   "flight_number",
	"airline":        "airline",
	"origin":         "origin",
	"destination":    "destination",
	"departureTime":  "departure_time",
	"arrivalTime":    "arrival_time",
	"price":          "price",
	"availableSeats": "available_seats",
	"cabinClass":     "cabin_class",
	"createdAt":      "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(row rowScanner) (*Flight, error) {
	var f Flight
	err := row.Scan(
		&f.ID,
		&f.FlightNumber,
		&f.Airline,
		&f.Origin,
		&f.Destination,
		&f.DepartureTime,
		&f.ArrivalTime,
		&f.Duration,
		&f.Price,
		&f.AircraftType,
		&f.AvailableSeats,
		&f.CabinClass,
		&f.Active,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *flightRepo) queryFlights(ctx context.Context, query string, args ...any) ([]Flight, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query flights", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *flightRepo) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query locations", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *flightRepo) FindAvailable(ctx context.Context, origin, destination string, from, to time.Time) ([]Flight, error) {
	return r.queryFlights(ctx, findAvailableQuery, origin, destination, from.UTC(), to.UTC())
}

func (r *flightRepo) FindByID(ctx context.Context, id int64) (*Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx, findByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to load flight", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return f, nil
}

func (r *flightRepo) Exists(ctx context.Context, flightNumber string, departure time.Time) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, existsQuery, flightNumber, departure.UTC()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *flightRepo) Create(ctx context.Context, f *Flight) error {
	row := r.db.QueryRowContext(ctx, insertFlightQuery,
		f.FlightNumber,
		f.Airline,
		f.Origin,
		f.Destination,
		f.DepartureTime.UTC(),
		f.ArrivalTime.UTC(),
		f.Duration,
		f.Price,
		f.AircraftType,
		f.AvailableSeats,
		f.CabinClass,
		f.Active,
	)
	if err := row.Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return r.mapWriteError(err, f)
	}
	r.logger.Debug("flight created", zap.Int64("id", f.ID))
	return nil
}

func (r *flightRepo) Update(ctx context.Context, f *Flight) error {
	f.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, updateFlightQuery,
		f.ID,
		f.FlightNumber,
		f.Airline,
		f.Origin,
		f.Destination,
		f.DepartureTime.UTC(),
		f.ArrivalTime.UTC(),
		f.Duration,
		f.Price,
		f.AircraftType,
		f.AvailableSeats,
		f.CabinClass,
		f.Active,
		f.UpdatedAt,
	)
	if err != nil {
		return r.mapWriteError(err, f)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *flightRepo) mapWriteError(err error, f *Flight) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		r.logger.Warn("flight write canceled/timed out", zap.Error(err))
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		r.logger.Debug("duplicate flight", zap.String("flight_number", f.FlightNumber))
		return ErrDuplicateFlight
	}
	r.logger.Error("failed to write flight", zap.Error(err))
	return err
}

func (r *flightRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteFlightQuery, id)
	if err != nil {
		r.logger.Error("failed to delete flight", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *flightRepo) List(ctx context.Context, q ListQuery) ([]Flight, int64, error) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		return nil, 0, ErrInvalidSort
	}
	dir := "ASC"
	if strings.EqualFold(q.SortDir, "desc") {
		dir = "DESC"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countFlightsQuery).Scan(&total); err != nil {
		r.logger.Error("failed to count flights", zap.Error(err))
		return nil, 0, err
	}

	flights, err := r.queryFlights(ctx, fmt.Sprintf(listFlightsQuery, col, dir), q.Size, q.Page*q.Size)
	if err != nil {
		return nil, 0, err
	}
	return flights, total, nil
}

func (r *flightRepo) DistinctOrigins(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, distinctOriginsQuery)
}

func (r *flightRepo) DistinctDestinations(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, distinctDestinationsQuery)
}

func (r *flightRepo) DistinctLocations(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, distinctLocationsQuery)
}

func (r *flightRepo) Upcoming(ctx context.Context, from time.Time, limit int) ([]Flight, error) {
	return r.queryFlights(ctx, upcomingQuery, from.UTC(), limit)
}
