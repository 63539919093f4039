package flight

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/flightdesk/internal/gate"
	"github.com/mehmetcc/flightdesk/internal/httpx"
	"github.com/mehmetcc/flightdesk/internal/metrics"
	"github.com/mehmetcc/flightdesk/internal/user"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	requestTimeout = 5 * time.Second
	dateLayout     = "2006-01-02"
)

var (
	durationPattern = regexp.MustCompile(`^\d+h \d+m$`)
	maxPrice        = decimal.New(1, 8)
)

type FlightHandler interface {
	Search(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Locations(w http.ResponseWriter, r *http.Request)
	Origins(w http.ResponseWriter, r *http.Request)
	Destinations(w http.ResponseWriter, r *http.Request)
	Upcoming(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type flightHandler struct {
	logger  *zap.Logger
	service Service
	binder  *httpx.Binder
	metrics *metrics.Metrics
}

// NewFlightHandler registers the flight validation rules on the binder's
// validator and returns the /flights routes.
func NewFlightHandler(service Service, binder *httpx.Binder, m *metrics.Metrics, l *zap.Logger) FlightHandler {
	registerValidations(binder.Validator())
	return &flightHandler{
		logger:  l,
		service: service,
		binder:  binder,
		metrics: m,
	}
}

func registerValidations(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	must(v.RegisterValidation("flight_duration", func(fl validator.FieldLevel) bool {
		return durationPattern.MatchString(fl.Field().String())
	}))
	// price > 0 with at most 8 integer and 2 fractional digits
	must(v.RegisterValidation("flight_price", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return d.IsPositive() && d.LessThan(maxPrice) && d.Equal(d.Truncate(2))
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func (h *flightHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/search", h.Search)
	r.Get("/locations", h.Locations)
	r.Get("/locations/origins", h.Origins)
	r.Get("/locations/destinations", h.Destinations)
	r.Get("/upcoming", h.Upcoming)

	r.Route("/admin", func(r chi.Router) {
		r.Use(gate.RequireRole(user.RoleAdmin, h.logger, h.metrics))
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func (h *flightHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req searchRequest
	if !h.binder.Bind(w, r, &req) {
		return
	}

	q := SearchQuery{
		Origin:      req.Origin,
		Destination: req.Destination,
		TripType:    req.TripType,
		Passengers:  req.Passengers,
		Rooms:       req.Rooms,
	}
	// layouts were checked by the validator
	q.DepartureDate, _ = time.Parse(dateLayout, req.DepartureDate)
	if req.ReturnDate != "" {
		ret, _ := time.Parse(dateLayout, req.ReturnDate)
		q.ReturnDate = &ret
	}

	res, err := h.service.Search(ctx, q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, "Flight search completed successfully", res)
}

func (h *flightHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req createFlightRequest
	if !h.binder.Bind(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	created, err := h.service.Create(ctx, &Flight{
		FlightNumber:   req.FlightNumber,
		Airline:        req.Airline,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Duration:       req.Duration,
		Price:          req.Price,
		AircraftType:   req.AircraftType,
		AvailableSeats: req.AvailableSeats,
		CabinClass:     req.CabinClass,
		Active:         active,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, "Flight created successfully", created)
}

func (h *flightHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, "Flight retrieved successfully", f)
}

func (h *flightHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	qs := r.URL.Query()
	page, err1 := intParam(qs.Get("page"), 0)
	size, err2 := intParam(qs.Get("size"), DefaultPageSize)
	if err := errors.Join(err1, err2); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrBadRequest,
			Message: "page and size must be integers",
		})
		return
	}

	res, err := h.service.List(ctx, ListQuery{
		Page:    page,
		Size:    size,
		SortBy:  qs.Get("sortBy"),
		SortDir: qs.Get("sortDir"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, "Flights retrieved successfully", res)
}

func (h *flightHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateFlightRequest
	if !h.binder.Bind(w, r, &req) {
		return
	}

	f, err := h.service.Update(ctx, id, Update{
		FlightNumber:   req.FlightNumber,
		Airline:        req.Airline,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Duration:       req.Duration,
		Price:          req.Price,
		AircraftType:   req.AircraftType,
		AvailableSeats: req.AvailableSeats,
		CabinClass:     req.CabinClass,
		Active:         req.Active,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, "Flight updated successfully", f)
}

func (h *flightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, "Flight deleted successfully", nil)
}

func (h *flightHandler) Locations(w http.ResponseWriter, r *http.Request) {
	h.writeLocations(w, r, h.service.Locations, "Available locations retrieved successfully")
}

func (h *flightHandler) Origins(w http.ResponseWriter, r *http.Request) {
	h.writeLocations(w, r, h.service.Origins, "Available origins retrieved successfully")
}

func (h *flightHandler) Destinations(w http.ResponseWriter, r *http.Request) {
	h.writeLocations(w, r, h.service.Destinations, "Available destinations retrieved successfully")
}

func (h *flightHandler) writeLocations(w http.ResponseWriter, r *http.Request, load func(context.Context) ([]Location, error), msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	locs, err := load(ctx)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msg, locs)
}

func (h *flightHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	limit, err := intParam(r.URL.Query().Get("limit"), DefaultUpcomingLimit)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrBadRequest,
			Message: "limit must be an integer",
		})
		return
	}

	flights, err := h.service.Upcoming(ctx, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, "Upcoming flights retrieved successfully", flights)
}

func (h *flightHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, ErrDuplicateFlight):
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: err.Error(),
		})
	case errors.Is(err, ErrInvalidSort),
		errors.Is(err, ErrDepartureInPast),
		errors.Is(err, ErrArrivalOrder),
		errors.Is(err, ErrDateInPast):
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrBadRequest,
			Message: err.Error(),
		})
	default:
		h.logger.Error("internal server error", zap.Error(err))
		httpx.WriteInternal(w)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrBadRequest,
			Message: "invalid flight id",
		})
		return 0, false
	}
	return id, true
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

type searchRequest struct {
	Origin        string `json:"origin"        validate:"required,min=2"`
	Destination   string `json:"destination"   validate:"required,min=2"`
	DepartureDate string `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"returnDate"    validate:"omitempty,datetime=2006-01-02"`
	TripType      string `json:"tripType"      validate:"required,oneof=oneway roundtrip"`
	Passengers    int    `json:"passengers"    validate:"required,min=1,max=9"`
	Rooms         int    `json:"rooms"         validate:"required,min=1,max=5"`
}

type createFlightRequest struct {
	FlightNumber   string          `json:"flightNumber"   validate:"required,min=2,max=10"`
	Airline        string          `json:"airline"        validate:"required,min=2,max=50"`
	Origin         string          `json:"origin"         validate:"required,min=2,max=50"`
	Destination    string          `json:"destination"    validate:"required,min=2,max=50"`
	DepartureTime  time.Time       `json:"departureTime"  validate:"required"`
	ArrivalTime    time.Time       `json:"arrivalTime"    validate:"required"`
	Duration       string          `json:"duration"       validate:"required,flight_duration"`
	Price          decimal.Decimal `json:"price"          validate:"flight_price"`
	AircraftType   string          `json:"aircraftType"   validate:"required,min=2,max=50"`
	AvailableSeats int             `json:"availableSeats" validate:"required,min=1,max=500"`
	CabinClass     string          `json:"cabinClass"     validate:"required,oneof=Economy Business First"`
	Active         *bool           `json:"active"`
}

type updateFlightRequest struct {
	FlightNumber   *string          `json:"flightNumber"   validate:"omitempty,min=2,max=10"`
	Airline        *string          `json:"airline"        validate:"omitempty,min=2,max=50"`
	Origin         *string          `json:"origin"         validate:"omitempty,min=2,max=50"`
	Destination    *string          `json:"destination"    validate:"omitempty,min=2,max=50"`
	DepartureTime  *time.Time       `json:"departureTime"`
	ArrivalTime    *time.Time       `json:"arrivalTime"`
	Duration       *string          `json:"duration"       validate:"omitempty,flight_duration"`
	Price          *decimal.Decimal `json:"price"          validate:"omitempty,flight_price"`
	AircraftType   *string          `json:"aircraftType"   validate:"omitempty,min=2,max=50"`
	AvailableSeats *int             `json:"availableSeats" validate:"omitempty,min=0,max=500"`
	CabinClass     *string          `json:"cabinClass"     validate:"omitempty,oneof=Economy Business First"`
	Active         *bool            `json:"active"`
}
