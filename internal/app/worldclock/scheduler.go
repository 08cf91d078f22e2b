package worldclock

import (
	"context"
	"errors"
	"time"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/domain/calendar"
)

var ErrInvalidDate = errors.New("invalid calendar date")

// Scheduler advances the world clock one week at a time and fans out the
// dependent world jobs. All clock mutation happens under the singleton row's
// lock, so redundant tick triggers serialize instead of double-advancing.
type Scheduler struct {
	TxManager    ports.TxManager
	Clocks       ports.WorldClockRepository
	Tasks        ports.TaskDispatcher
	TickInterval time.Duration
	Now          func() time.Time
}

func (s Scheduler) interval() time.Duration {
	if s.TickInterval > 0 {
		return s.TickInterval
	}
	return calendar.DefaultTickInterval
}

func (s Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetCurrent loads the clock, creating the world's first row if absent.
func (s Scheduler) GetCurrent(ctx context.Context) (calendar.Clock, error) {
	clk, ok, err := s.Clocks.Get(ctx)
	if err != nil {
		return calendar.Clock{}, err
	}
	if ok {
		return clk, nil
	}

	var created calendar.Clock
	err = s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		clk, ok, err := s.Clocks.GetForUpdate(txCtx)
		if err != nil {
			return err
		}
		if ok {
			created = clk
			return nil
		}
		created = calendar.NewClock()
		return s.Clocks.Save(txCtx, created)
	})
	if err != nil {
		return calendar.Clock{}, err
	}
	return created, nil
}

// ShouldTick reports whether enough real time has passed for a week advance.
func (s Scheduler) ShouldTick(ctx context.Context) (bool, error) {
	clk, err := s.GetCurrent(ctx)
	if err != nil {
		return false, err
	}
	return clk.Due(s.now(), s.interval()), nil
}

// AdvanceWeek moves the world forward one week unconditionally and fans out
// the downstream jobs. Callers wanting interval gating use ProcessTick.
func (s Scheduler) AdvanceWeek(ctx context.Context) (calendar.Clock, error) {
	result, err := s.advance(ctx, false)
	if err != nil {
		return calendar.Clock{}, err
	}
	s.fanOut(ctx, result)
	return result.Clock, nil
}

// ProcessTick is the external periodic trigger's entry point: advance one
// week if the interval has elapsed, otherwise do nothing. Safe to call as
// often as the trigger likes.
func (s Scheduler) ProcessTick(ctx context.Context) (bool, error) {
	result, err := s.advance(ctx, true)
	if err != nil {
		return false, err
	}
	if !result.advanced {
		return false, nil
	}
	s.fanOut(ctx, result)
	return true, nil
}

type advanceOutcome struct {
	calendar.AdvanceResult
	advanced bool
}

func (s Scheduler) advance(ctx context.Context, onlyIfDue bool) (advanceOutcome, error) {
	var out advanceOutcome
	err := s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		clk, ok, err := s.Clocks.GetForUpdate(txCtx)
		if err != nil {
			return err
		}
		if !ok {
			clk = calendar.NewClock()
		}
		now := s.now()
		if onlyIfDue && !clk.Due(now, s.interval()) {
			out = advanceOutcome{AdvanceResult: calendar.AdvanceResult{Clock: clk}}
			return nil
		}
		out = advanceOutcome{AdvanceResult: clk.Advanced(now), advanced: true}
		return s.Clocks.Save(txCtx, out.Clock)
	})
	if err != nil {
		return advanceOutcome{}, err
	}
	return out, nil
}

// fanOut dispatches the downstream world jobs after the advance commits.
// Dispatch failures are not rolled back; the jobs are idempotent and the task
// layer owns redelivery.
func (s Scheduler) fanOut(ctx context.Context, result advanceOutcome) {
	if s.Tasks == nil {
		return
	}
	payload := map[string]any{
		"year":   result.Clock.Year,
		"season": string(result.Clock.Season),
		"week":   result.Clock.Week,
	}
	_ = s.Tasks.Enqueue(ctx, ports.LaneWorld, ports.Task{Kind: ports.TaskKindFoodConsumption, Payload: payload})
	if result.YearChanged {
		_ = s.Tasks.Enqueue(ctx, ports.LaneWorld, ports.Task{Kind: ports.TaskKindNPCAging, Payload: payload})
		_ = s.Tasks.Enqueue(ctx, ports.LaneWorld, ports.Task{Kind: ports.TaskKindNPCReproduction, Payload: payload})
	}
}

// SetDate is the admin/test override: writes the date directly, skipping the
// cascade so no downstream jobs fire.
func (s Scheduler) SetDate(ctx context.Context, year int, season calendar.Season, week int) (calendar.Clock, error) {
	target := calendar.Clock{Year: year, Season: season, Week: week}
	if !target.Valid() {
		return calendar.Clock{}, ErrInvalidDate
	}

	var out calendar.Clock
	err := s.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		clk, ok, err := s.Clocks.GetForUpdate(txCtx)
		if err != nil {
			return err
		}
		if ok {
			target.LastTickAt = clk.LastTickAt
		}
		out = target
		return s.Clocks.Save(txCtx, out)
	})
	if err != nil {
		return calendar.Clock{}, err
	}
	return out, nil
}

// TravelSpeedModifier is the current season's travel multiplier.
func (s Scheduler) TravelSpeedModifier(ctx context.Context) (float64, error) {
	clk, err := s.GetCurrent(ctx)
	if err != nil {
		return 0, err
	}
	return calendar.ModifiersFor(clk.Season).TravelSpeed, nil
}

// GatheringYieldModifier is the current season's gathering multiplier.
func (s Scheduler) GatheringYieldModifier(ctx context.Context) (float64, error) {
	clk, err := s.GetCurrent(ctx)
	if err != nil {
		return 0, err
	}
	return calendar.ModifiersFor(clk.Season).GatheringYield, nil
}
