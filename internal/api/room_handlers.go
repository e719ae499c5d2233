package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"roombooking/internal/service"
	"roombooking/internal/utils"
)

type RoomHandler struct {
	Rooms        *service.RoomService
	Availability *service.AvailabilityService
	logger       *zap.Logger
}

func NewRoomHandler(rooms *service.RoomService, availability *service.AvailabilityService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Availability: availability, logger: logger}
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.ListRooms(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, rooms)
}

// ListAvailable serves /rooms/available?roomIds=1,2&from=..&to=..; missing
// rooms mean every room, missing bounds fall back to the default window.
func (h *RoomHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	roomIDs := utils.ParseRoomIDs(q["roomIds"]...)
	if len(roomIDs) == 0 {
		all, err := h.Rooms.RoomIDs(r.Context())
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		roomIDs = all
	}
	if len(roomIDs) == 0 {
		writeSuccess(w, map[string][]int64{})
		return
	}

	from, to := h.Availability.DefaultWindow()
	if v := q.Get("from"); v != "" {
		parsed, err := utils.ParseEpoch(v)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid from date")
			return
		}
		from = parsed
	}
	if v := q.Get("to"); v != "" {
		parsed, err := utils.ParseEpoch(v)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid to date")
			return
		}
		to = parsed
	}

	times, err := h.Availability.ListAvailable(r.Context(), roomIDs, from, to)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, times)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store  Pinger
	logger *zap.Logger
}

func NewHealthHandler(store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{Store: store, logger: logger}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeFailure(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeSuccess(w, HealthResponse{Status: "ok"})
}
