package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/domain/conflict"
	"github.com/kalyan021004/todoboard/internal/domain/leader"
	"github.com/kalyan021004/todoboard/internal/domain/tracing"
)

// Sweeper periodically expires pending conflict Records that nobody has
// resolved within the configured TTL, closing them as discarded so the
// stored state stays authoritative and the pending queue does not grow
// without bound. Records are closed, never deleted; an expired Record is
// still readable as part of the audit trail.
//
// Runs on every app instance but only acts while holding the leader lock,
// so a sweep happens once per cluster per interval.
type Sweeper struct {
	cron *cron.Cron

	conflictsService conflict.Service
	leaderChecker    leader.Checker
	tracer           tracing.Tracer
	settings         config.Conflicts

	getUTC func() time.Time // for mocking
}

func NewSweeper(conflictsService conflict.Service, leaderChecker leader.Checker, tracer tracing.Tracer, settings config.Conflicts) *Sweeper {
	return &Sweeper{
		cron:             cron.New(cron.WithLocation(time.UTC)),
		conflictsService: conflictsService,
		leaderChecker:    leaderChecker,
		tracer:           tracer,
		settings:         settings,
		getUTC: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// For testing
func (s *Sweeper) SetUTCGetter(getter func() time.Time) {
	s.getUTC = getter
}

func (s *Sweeper) Start() {
	job := cron.NewChain(
		cron.Recover(zeroLogCronLogger{}),
		cron.DelayIfStillRunning(zeroLogCronLogger{}),
	).Then(cron.FuncJob(s.runIfLeader))
	s.cron.Schedule(cron.Every(s.settings.Sweep.RunInterval), job)
	s.cron.Start()
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) runIfLeader() {
	if !s.leaderChecker.IsLeader() {
		log.Debug().Msg("Not the leader, skipping pending conflict sweep")
		return
	}
	tx := s.tracer.BackgroundTx("pending-conflict-sweep")
	defer tx.End()
	if err := s.Sweep(tx.Context()); err != nil {
		log.Error().Err(err).Msg("Pending conflict sweep failed")
	}
}

// Sweep closes all pending Records that were detected more than PendingTtl
// ago. Losing the close on an individual Record to a concurrent resolver is
// not an error; that Record simply no longer needs expiring.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.getUTC()
	cutoff := now.Add(-s.settings.PendingTtl)
	expired, err := s.conflictsService.ListPending(ctx, cutoff, s.settings.Sweep.BatchSize)
	if err != nil {
		return err
	}
	swept := 0
	for i := range expired {
		record := expired[i]
		if err := record.IntoResolved(conflict.DISCARD, now, &record.Current.Data); err != nil {
			continue
		}
		if _, err := s.conflictsService.Update(ctx, &record); err != nil {
			if _, raced := err.(conflict.AlreadyResolved); raced {
				continue
			}
			return err
		}
		swept++
	}
	if swept > 0 {
		log.Info().
			Int("swept", swept).
			Time("cutoff", cutoff).
			Msg("Expired pending conflicts")
	}
	return nil
}

type zeroLogCronLogger struct {
}

func (z zeroLogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	if log.Info().Enabled() {
		formatted := formatTimeValues(keysAndValues)
		log.Info().Fields(formatted).Msg(msg)
	}
}

func (z zeroLogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if log.Error().Enabled() {
		formatted := formatTimeValues(keysAndValues)
		log.Error().Err(err).Fields(formatted).Msg(msg)
	}
}

// formatTimeValues formats any time.Time values as RFC3339 *and*
// returns the even-odd idx key-value pair slice as a map
func formatTimeValues(keysAndValues []interface{}) map[string]interface{} {
	formattedArgs := make(map[string]interface{}, len(keysAndValues)/2)
	for idx := 0; idx < len(keysAndValues); idx += 2 {
		var key string
		if s, ok := keysAndValues[idx].(string); ok {
			key = s
		} else {
			key = fmt.Sprint(keysAndValues[idx])
		}
		valueIdx := idx + 1
		if len(keysAndValues) > valueIdx {
			value := keysAndValues[valueIdx]
			if t, ok := value.(time.Time); ok {
				value = t.Format(time.RFC3339)
			}
			formattedArgs[key] = value
		}
	}
	return formattedArgs
}
