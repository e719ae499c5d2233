package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"roombooking/internal/db"
	"roombooking/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
	logger  *zap.Logger
}

func NewBookingHandler(svc *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, logger: logger}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	roomID, ok := req.RoomID.ID()
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid room ID")
		return
	}
	start, ok := req.Start.Epoch()
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	name, ok := req.ReservationName.Get()
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid reservation name")
		return
	}

	id, err := h.Service.CreateBooking(r.Context(), roomID, start, name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, CreateBookingResponse{BookingID: id})
}

func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, ok := req.BookingID.ID()
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var changes service.BookingChanges
	raw, ok := req.Status.Get()
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid booking status")
		return
	}
	if raw != nil {
		status, err := db.ParseStatus(*raw)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid booking status")
			return
		}
		changes.Status = &status
	}
	if changes.ReservationName, ok = req.ReservationName.Get(); !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid reservation name")
		return
	}

	if err := h.Service.UpdateBooking(r.Context(), id, changes); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, nil)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeFailure(w, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	view, err := h.Service.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, view)
}
