package flight

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memRepo is an in-memory Repo with the same filtering rules as the SQL one.
type memRepo struct {
	mu      sync.Mutex
	flights map[int64]*Flight
	next    int64
	err     error
}

func newMemRepo() *memRepo {
	return &memRepo{flights: map[int64]*Flight{}}
}

func (m *memRepo) sorted() []Flight {
	out := make([]Flight, 0, len(m.flights))
	for _, f := range m.flights {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DepartureTime.Before(out[j].DepartureTime)
	})
	return out
}

func (m *memRepo) FindAvailable(_ context.Context, origin, destination string, from, to time.Time) ([]Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []Flight
	for _, f := range m.sorted() {
		if f.Origin == origin && f.Destination == destination &&
			!f.DepartureTime.Before(from) && f.DepartureTime.Before(to) &&
			f.Active && f.AvailableSeats > 0 {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memRepo) FindByID(_ context.Context, id int64) (*Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memRepo) Exists(_ context.Context, number string, departure time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.flights {
		if f.FlightNumber == number && f.DepartureTime.Equal(departure) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Create(_ context.Context, f *Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	f.ID = m.next
	cp := *f
	m.flights[f.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, f *Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flights[f.ID]; !ok {
		return ErrNotFound
	}
	cp := *f
	m.flights[f.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flights[id]; !ok {
		return ErrNotFound
	}
	delete(m.flights, id)
	return nil
}

func (m *memRepo) List(_ context.Context, q ListQuery) ([]Flight, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := sortColumns[q.SortBy]; !ok {
		return nil, 0, ErrInvalidSort
	}
	all := m.sorted()
	start := q.Page * q.Size
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *memRepo) distinct(pick func(Flight) []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, f := range m.sorted() {
		if !f.Active {
			continue
		}
		for _, c := range pick(f) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (m *memRepo) DistinctOrigins(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.distinct(func(f Flight) []string { return []string{f.Origin} }), nil
}

func (m *memRepo) DistinctDestinations(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.distinct(func(f Flight) []string { return []string{f.Destination} }), nil
}

func (m *memRepo) DistinctLocations(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.distinct(func(f Flight) []string { return []string{f.Origin, f.Destination} }), nil
}

func (m *memRepo) Upcoming(_ context.Context, from time.Time, limit int) ([]Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Flight
	for _, f := range m.sorted() {
		if f.Active && !f.DepartureTime.Before(from) {
			out = append(out, f)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
