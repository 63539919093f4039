package flight

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CabinEconomy  = "Economy"
	CabinBusiness = "Business"
	CabinFirst    = "First"

	TripOneWay    = "oneway"
	TripRoundTrip = "roundtrip"

	// Currency of every price in the catalogue.
	Currency = "COP"
)

// Flight is a row of the catalogue as administrators see it.
type Flight struct {
	ID             int64           `json:"id"`
	FlightNumber   string          `json:"flightNumber"`
	Airline        string          `json:"airline"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	DepartureTime  time.Time       `json:"departureTime"`
	ArrivalTime    time.Time       `json:"arrivalTime"`
	Duration       string          `json:"duration"`
	Price          decimal.Decimal `json:"price"`
	AircraftType   string          `json:"aircraftType"`
	AvailableSeats int             `json:"availableSeats"`
	CabinClass     string          `json:"cabinClass"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Summary is the public view of a flight returned by search.
type Summary struct {
	FlightNumber   string          `json:"flightNumber"`
	Airline        string          `json:"airline"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	DepartureTime  time.Time       `json:"departureTime"`
	ArrivalTime    time.Time       `json:"arrivalTime"`
	Duration       string          `json:"duration"`
	Price          decimal.Decimal `json:"price"`
	AircraftType   string          `json:"aircraftType"`
	AvailableSeats int             `json:"availableSeats"`
	CabinClass     string          `json:"cabinClass"`
}

func (f *Flight) Summary() Summary {
	return Summary{
		FlightNumber:   f.FlightNumber,
		Airline:        f.Airline,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime,
		ArrivalTime:    f.ArrivalTime,
		Duration:       f.Duration,
		Price:          f.Price,
		AircraftType:   f.AircraftType,
		AvailableSeats: f.AvailableSeats,
		CabinClass:     f.CabinClass,
	}
}

func summaries(flights []Flight) []Summary {
	out := make([]Summary, 0, len(flights))
	for i := range flights {
		out = append(out, flights[i].Summary())
	}
	return out
}

// Update carries a partial modification; nil fields are left untouched.
type Update struct {
	FlightNumber   *string
	Airline        *string
	Origin         *string
	Destination    *string
	DepartureTime  *time.Time
	ArrivalTime    *time.Time
	Duration       *string
	Price          *decimal.Decimal
	AircraftType   *string
	AvailableSeats *int
	CabinClass     *string
	Active         *bool
}

func (u *Update) apply(f *Flight) {
	if u.FlightNumber != nil {
		f.FlightNumber = *u.FlightNumber
	}
	if u.Airline != nil {
		f.Airline = *u.Airline
	}
	if u.Origin != nil {
		f.Origin = NormalizeCode(*u.Origin)
	}
	if u.Destination != nil {
		f.Destination = NormalizeCode(*u.Destination)
	}
	if u.DepartureTime != nil {
		f.DepartureTime = u.DepartureTime.UTC()
	}
	if u.ArrivalTime != nil {
		f.ArrivalTime = u.ArrivalTime.UTC()
	}
	if u.Duration != nil {
		f.Duration = *u.Duration
	}
	if u.Price != nil {
		f.Price = *u.Price
	}
	if u.AircraftType != nil {
		f.AircraftType = *u.AircraftType
	}
	if u.AvailableSeats != nil {
		f.AvailableSeats = *u.AvailableSeats
	}
	if u.CabinClass != nil {
		f.CabinClass = *u.CabinClass
	}
	if u.Active != nil {
		f.Active = *u.Active
	}
}

// SearchQuery selects flights departing on a calendar day. Dates are taken
// at UTC midnight.
type SearchQuery struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	TripType      string
	Passengers    int
	Rooms         int
}

type SearchMetadata struct {
	SearchID     string    `json:"searchId"`
	SearchTime   time.Time `json:"searchTime"`
	TotalResults int       `json:"totalResults"`
	Currency     string    `json:"currency"`
}

type SearchResult struct {
	OutboundFlights []Summary      `json:"outboundFlights"`
	ReturnFlights   []Summary      `json:"returnFlights"`
	Metadata        SearchMetadata `json:"metadata"`
}

type Location struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ListQuery pages through the whole catalogue. SortBy uses the JSON field
// names of Flight.
type ListQuery struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

type Page struct {
	Content       []Flight `json:"content"`
	Page          int      `json:"page"`
	Size          int      `json:"size"`
	TotalElements int64    `json:"totalElements"`
	TotalPages    int      `json:"totalPages"`
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
