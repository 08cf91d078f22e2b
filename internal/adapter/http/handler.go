package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/app/queue"
	"github.com/djasnowski/myrefell-sub002/internal/app/worldclock"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
	"github.com/djasnowski/myrefell-sub002/internal/domain/calendar"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const playerIDHeader = "X-Player-ID"

var ErrMissingPlayerHeader = errors.New("missing x-player-id header")

// Handler is the thin HTTP surface over the queue manager and the world
// clock scheduler. Authentication is handled upstream; the player id header
// arrives already verified.
type Handler struct {
	Queue    queue.Manager
	Calendar worldclock.Scheduler
	KPI      kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	q := s.Group("/api/queue")
	q.POST("/start", h.start)
	q.POST("/cancel", h.cancel)
	q.GET("/active", h.active)
	q.GET("/latest", h.latest)
	q.POST("/dismiss", h.dismiss)

	cal := s.Group("/api/calendar")
	cal.GET("/current", h.calendarCurrent)
	cal.POST("/set-date", h.calendarSetDate)

	s.GET("/ops/kpi", h.kpi)
}

type startRequest struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
	Total  int            `json:"total"`
}

type dismissRequest struct {
	QueueID string `json:"queue_id"`
}

type setDateRequest struct {
	Year   int    `json:"year"`
	Season string `json:"season"`
	Week   int    `json:"week"`
}

type queueRecordResponse struct {
	ID            string         `json:"id"`
	Action        string         `json:"action"`
	Params        map[string]any `json:"params,omitempty"`
	Status        string         `json:"status"`
	Total         int            `json:"total"`
	Completed     int            `json:"completed"`
	TotalXP       int            `json:"total_xp"`
	TotalQuantity int            `json:"total_quantity"`
	StopReason    string         `json:"stop_reason,omitempty"`
}

func toRecordResponse(rec action.Record) queueRecordResponse {
	return queueRecordResponse{
		ID:            rec.ID,
		Action:        string(rec.Action),
		Params:        rec.Params,
		Status:        string(rec.Status),
		Total:         rec.Total,
		Completed:     rec.Completed,
		TotalXP:       rec.TotalXP,
		TotalQuantity: rec.TotalQuantity,
		StopReason:    rec.StopReason,
	}
}

type clockResponse struct {
	Year           int     `json:"year"`
	Season         string  `json:"season"`
	Week           int     `json:"week"`
	TravelSpeed    float64 `json:"travel_speed"`
	GatheringYield float64 `json:"gathering_yield"`
}

func toClockResponse(clk calendar.Clock) clockResponse {
	mods := calendar.ModifiersFor(clk.Season)
	return clockResponse{
		Year:           clk.Year,
		Season:         string(clk.Season),
		Week:           clk.Week,
		TravelSpeed:    mods.TravelSpeed,
		GatheringYield: mods.GatheringYield,
	}
}

func (h Handler) start(c context.Context, ctx *app.RequestContext) {
	playerID, err := requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body startRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	rec, err := h.Queue.Start(c, queue.StartRequest{
		PlayerID: playerID,
		Action:   action.Type(body.Action),
		Params:   body.Params,
		Total:    body.Total,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, toRecordResponse(rec))
}

func (h Handler) cancel(c context.Context, ctx *app.RequestContext) {
	playerID, err := requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := h.Queue.Cancel(c, playerID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"status": "cancelled"})
}

func (h Handler) active(c context.Context, ctx *app.RequestContext) {
	playerID, err := requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	rec, err := h.Queue.GetActive(c, playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, toRecordResponse(rec))
}

func (h Handler) latest(c context.Context, ctx *app.RequestContext) {
	playerID, err := requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	rec, err := h.Queue.GetLatestVisible(c, playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, toRecordResponse(rec))
}

func (h Handler) dismiss(c context.Context, ctx *app.RequestContext) {
	playerID, err := requirePlayer(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body dismissRequest
	if err := decodeJSON(ctx, &body); err != nil || body.QueueID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := h.Queue.Dismiss(c, playerID, body.QueueID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]string{"status": "dismissed"})
}

func (h Handler) calendarCurrent(c context.Context, ctx *app.RequestContext) {
	clk, err := h.Calendar.GetCurrent(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, toClockResponse(clk))
}

func (h Handler) calendarSetDate(c context.Context, ctx *app.RequestContext) {
	var body setDateRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	clk, err := h.Calendar.SetDate(c, body.Year, calendar.Season(body.Season), body.Week)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, toClockResponse(clk))
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func requirePlayer(ctx *app.RequestContext) (string, error) {
	playerID := strings.TrimSpace(string(ctx.GetHeader(playerIDHeader)))
	if playerID == "" {
		return "", ErrMissingPlayerHeader
	}
	return playerID, nil
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingPlayerHeader):
		writeErrorBody(ctx, consts.StatusBadRequest, "missing_player_id", err.Error())
	case errors.Is(err, queue.ErrAlreadyQueued):
		writeErrorBody(ctx, consts.StatusConflict, "already_queued", err.Error())
	case errors.Is(err, queue.ErrNoActiveQueue):
		writeErrorBody(ctx, consts.StatusNotFound, "no_active_queue", err.Error())
	case errors.Is(err, queue.ErrInvalidRequest),
		errors.Is(err, worldclock.ErrInvalidDate):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
