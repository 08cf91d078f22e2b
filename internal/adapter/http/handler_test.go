package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/adapter/repo/memory"
	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/app/queue"
	"github.com/djasnowski/myrefell-sub002/internal/app/worldclock"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"
	"github.com/djasnowski/myrefell-sub002/internal/domain/calendar"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestRequirePlayer_FromHeader(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.Header.Set(playerIDHeader, "player-1")

	playerID, err := requirePlayer(ctx)
	if err != nil {
		t.Fatalf("requirePlayer error: %v", err)
	}
	if playerID != "player-1" {
		t.Fatalf("unexpected player id: %q", playerID)
	}
}

func TestRequirePlayer_MissingHeader(t *testing.T) {
	ctx := &app.RequestContext{}

	_, err := requirePlayer(ctx)
	if err != ErrMissingPlayerHeader {
		t.Fatalf("expected ErrMissingPlayerHeader, got %v", err)
	}
}

func TestRequirePlayer_BlankHeader(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.Header.Set(playerIDHeader, "   ")

	_, err := requirePlayer(ctx)
	if err != ErrMissingPlayerHeader {
		t.Fatalf("expected ErrMissingPlayerHeader, got %v", err)
	}
}

func TestWriteError_AlreadyQueued(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, queue.ErrAlreadyQueued)

	if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "already_queued"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestWriteError_NoActiveQueue(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, queue.ErrNoActiveQueue)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "no_active_queue"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestWriteError_InvalidRequest(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, queue.ErrInvalidRequest)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestWriteError_InvalidDate(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, worldclock.ErrInvalidDate)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestWriteError_NotFound(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, ports.ErrNotFound)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "not_found"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestWriteError_Unknown(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, errors.New("db exploded"))

	if got, want := ctx.Response.StatusCode(), consts.StatusInternalServerError; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}

	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["error"]["message"], "internal error"; got != want {
		t.Fatalf("internal error message leaked details: got=%q", got)
	}
}

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return body["error"]["code"]
}

func newTestHandler() Handler {
	store := memory.NewStore()
	mgr := queue.Manager{
		TxManager: memory.NewTxManager(store),
		Records:   memory.NewQueueRecordRepo(store),
		Tuning:    action.DefaultTuning(),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	sched := worldclock.Scheduler{
		TxManager:    memory.NewTxManager(store),
		Clocks:       memory.NewWorldClockRepo(store),
		TickInterval: calendar.DefaultTickInterval,
		Now:          func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	return Handler{Queue: mgr, Calendar: sched}
}

func TestStartHandler_CreatesQueue(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.Header.Set(playerIDHeader, "player-1")
	ctx.Request.SetBody([]byte(`{"action":"gathering","total":5}`))

	h.start(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusCreated; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body queueRecordResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.ID == "" {
		t.Fatalf("expected record id in response")
	}
	if body.Status != string(action.StatusActive) {
		t.Fatalf("unexpected status: %q", body.Status)
	}
	if body.Total != 5 {
		t.Fatalf("unexpected total: %d", body.Total)
	}
}

func TestStartHandler_SecondStartConflicts(t *testing.T) {
	h := newTestHandler()

	first := &app.RequestContext{}
	first.Request.Header.Set(playerIDHeader, "player-1")
	first.Request.SetBody([]byte(`{"action":"gathering","total":5}`))
	h.start(context.Background(), first)
	if first.Response.StatusCode() != consts.StatusCreated {
		t.Fatalf("first start failed: %s", first.Response.Body())
	}

	second := &app.RequestContext{}
	second.Request.Header.Set(playerIDHeader, "player-1")
	second.Request.SetBody([]byte(`{"action":"combat","total":3}`))
	h.start(context.Background(), second)

	if got, want := second.Response.StatusCode(), consts.StatusConflict; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestStartHandler_MissingPlayerHeader(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"action":"gathering","total":5}`))

	h.start(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got, want := errorCode(t, ctx), "missing_player_id"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestActiveHandler_NoQueue(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.Header.Set(playerIDHeader, "player-1")

	h.active(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestDismissHandler_MissingQueueID(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.Header.Set(playerIDHeader, "player-1")
	ctx.Request.SetBody([]byte(`{}`))

	h.dismiss(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestCalendarCurrentHandler_LazyCreates(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}

	h.calendarCurrent(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body clockResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Year != 1 || body.Season != string(calendar.SeasonSpring) || body.Week != 1 {
		t.Fatalf("unexpected initial clock: %+v", body)
	}
	if body.TravelSpeed == 0 || body.GatheringYield == 0 {
		t.Fatalf("expected seasonal modifiers in response: %+v", body)
	}
}

func TestCalendarSetDateHandler_Invalid(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"year":1,"season":"Monsoon","week":1}`))

	h.calendarSetDate(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestCalendarSetDateHandler_Valid(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"year":5,"season":"Winter","week":3}`))

	h.calendarSetDate(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var body clockResponse
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Year != 5 || body.Season != string(calendar.SeasonWinter) || body.Week != 3 {
		t.Fatalf("unexpected clock after set-date: %+v", body)
	}
}

func TestKPIHandler_NotConfigured(t *testing.T) {
	h := newTestHandler()
	ctx := &app.RequestContext{}

	h.kpi(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}
