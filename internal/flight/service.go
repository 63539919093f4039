package flight

import (
	"context"
	"time"

	"github.com/mehmetcc/flightdesk/internal/metrics"
	"github.com/mehmetcc/flightdesk/pkg/id"
	"go.uber.org/zap"
)

const (
	DefaultUpcomingLimit = 10
	MaxUpcomingLimit     = 100
	DefaultPageSize      = 20
	MaxPageSize          = 100
	DefaultSortBy        = "departureTime"
)

type Service interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	Create(ctx context.Context, f *Flight) (*Flight, error)
	Get(ctx context.Context, id int64) (*Flight, error)
	List(ctx context.Context, q ListQuery) (*Page, error)
	Update(ctx context.Context, id int64, u Update) (*Flight, error)
	Delete(ctx context.Context, id int64) error
	Origins(ctx context.Context) ([]Location, error)
	Destinations(ctx context.Context) ([]Location, error)
	Locations(ctx context.Context) ([]Location, error)
	Upcoming(ctx context.Context, limit int) ([]Summary, error)
}

type Option func(*flightService)

func WithClock(now func() time.Time) Option {
	return func(s *flightService) {
		s.now = now
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *flightService) {
		s.metrics = m
	}
}

type flightService struct {
	repo    Repo
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewFlightService(repo Repo, logger *zap.Logger, opts ...Option) Service {
	s := &flightService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *flightService) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	origin, destination := NormalizeCode(q.Origin), NormalizeCode(q.Destination)
	departure := startOfDay(q.DepartureDate)
	if departure.Before(startOfDay(s.now())) {
		return nil, ErrDateInPast
	}

	s.logger.Info("searching flights",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Time("date", departure),
		zap.String("trip_type", q.TripType),
	)

	outbound, err := s.repo.FindAvailable(ctx, origin, destination, departure, departure.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	var inbound []Flight
	if q.TripType == TripRoundTrip && q.ReturnDate != nil {
		ret := startOfDay(*q.ReturnDate)
		inbound, err = s.repo.FindAvailable(ctx, destination, origin, ret, ret.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
	}

	total := len(outbound) + len(inbound)
	s.metrics.Search(q.TripType, total)

	return &SearchResult{
		OutboundFlights: summaries(outbound),
		ReturnFlights:   summaries(inbound),
		Metadata: SearchMetadata{
			SearchID:     string(id.NewSearchID()),
			SearchTime:   s.now().UTC(),
			TotalResults: total,
			Currency:     Currency,
		},
	}, nil
}

func (s *flightService) Create(ctx context.Context, f *Flight) (*Flight, error) {
	f.Origin = NormalizeCode(f.Origin)
	f.Destination = NormalizeCode(f.Destination)
	f.DepartureTime = f.DepartureTime.UTC()
	f.ArrivalTime = f.ArrivalTime.UTC()

	if !f.DepartureTime.After(s.now()) {
		return nil, ErrDepartureInPast
	}
	if !f.ArrivalTime.After(f.DepartureTime) {
		return nil, ErrArrivalOrder
	}
	if err := s.ensureUnique(ctx, f.FlightNumber, f.DepartureTime); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("flight created", zap.Int64("id", f.ID), zap.String("flight_number", f.FlightNumber))
	return f, nil
}

func (s *flightService) ensureUnique(ctx context.Context, number string, departure time.Time) error {
	exists, err := s.repo.Exists(ctx, number, departure)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateFlight
	}
	return nil
}

func (s *flightService) Get(ctx context.Context, id int64) (*Flight, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *flightService) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}

	flights, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if flights == nil {
		flights = []Flight{}
	}

	pages := int((total + int64(q.Size) - 1) / int64(q.Size))
	return &Page{
		Content:       flights,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: total,
		TotalPages:    pages,
	}, nil
}

// Update applies u to the stored flight. Changing the flight number re-checks
// uniqueness against the resulting departure time.
func (s *flightService) Update(ctx context.Context, id int64, u Update) (*Flight, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.FlightNumber != nil && *u.FlightNumber != f.FlightNumber {
		departure := f.DepartureTime
		if u.DepartureTime != nil {
			departure = u.DepartureTime.UTC()
		}
		if err := s.ensureUnique(ctx, *u.FlightNumber, departure); err != nil {
			return nil, err
		}
	}

	u.apply(f)
	if !f.ArrivalTime.After(f.DepartureTime) {
		return nil, ErrArrivalOrder
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("flight updated", zap.Int64("id", f.ID))
	return f, nil
}

func (s *flightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("flight deleted", zap.Int64("id", id))
	return nil
}

func (s *flightService) Origins(ctx context.Context) ([]Location, error) {
	codes, err := s.repo.DistinctOrigins(ctx)
	if err != nil {
		return nil, err
	}
	return locations(codes), nil
}

func (s *flightService) Destinations(ctx context.Context) ([]Location, error) {
	codes, err := s.repo.DistinctDestinations(ctx)
	if err != nil {
		return nil, err
	}
	return locations(codes), nil
}

func (s *flightService) Locations(ctx context.Context) ([]Location, error) {
	codes, err := s.repo.DistinctLocations(ctx)
	if err != nil {
		return nil, err
	}
	return locations(codes), nil
}

func (s *flightService) Upcoming(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	if limit > MaxUpcomingLimit {
		limit = MaxUpcomingLimit
	}
	flights, err := s.repo.Upcoming(ctx, s.now(), limit)
	if err != nil {
		return nil, err
	}
	return summaries(flights), nil
}
