package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"roombooking/internal/ratelimit"
	"roombooking/internal/service"
)

type Deps struct {
	Bookings     *service.BookingService
	Rooms        *service.RoomService
	Availability *service.AvailabilityService
	Sweeper      *service.Sweeper
	Store        Pinger
	// Limiter is optional; nil disables rate limiting.
	Limiter  *ratelimit.Store
	TrustXFF bool
	Logger   *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bookingHandler := NewBookingHandler(d.Bookings, logger)
	roomHandler := NewRoomHandler(d.Rooms, d.Availability, logger)
	healthHandler := NewHealthHandler(d.Store, logger)
	sweep := SweepMiddleware(d.Sweeper, logger)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	r.HandleFunc("/healthz", healthHandler.Healthz).Methods("GET")

	// Rooms
	r.HandleFunc("/rooms/list", roomHandler.ListRooms).Methods("GET")
	r.Handle("/rooms/available", sweep(http.HandlerFunc(roomHandler.ListAvailable))).Methods("GET")

	// Bookings
	booking := r.PathPrefix("/booking").Subrouter()
	booking.Use(sweep)
	booking.HandleFunc("/create", bookingHandler.CreateBooking).Methods("POST")
	booking.HandleFunc("/update", bookingHandler.UpdateBooking).Methods("POST")
	booking.HandleFunc("/get/{id}", bookingHandler.GetBooking).Methods("GET")
	booking.HandleFunc("/{id}", bookingHandler.GetBooking).Methods("GET")

	var h http.Handler = r
	if d.Limiter != nil {
		h = RateLimit(d.Limiter, d.TrustXFF)(h)
	}
	h = RequestLogger(logger)(h)
	h = Recovery(logger)(h)
	return CORS(h)
}
