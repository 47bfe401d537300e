package conflict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/domain/conflict"
	apmtracing "github.com/kalyan021004/todoboard/internal/infra/apm/tracing"
)

var sweepNow = time.Date(2020, 3, 14, 15, 9, 26, 0, time.UTC)

var sweepSettings = config.Conflicts{
	PendingTtl: 24 * time.Hour,
	Sweep: config.ConflictSweep{
		RunInterval: time.Minute,
		BatchSize:   100,
	},
}

type mockLeaderChecker struct {
	isLeader bool
}

func (m *mockLeaderChecker) IsLeader() bool {
	return m.isLeader
}

func expiredRecord() conflict.Record {
	return conflict.Record{
		ID:         "stale",
		Board:      "b",
		TaskId:     "t1",
		Status:     conflict.PENDING,
		DetectedAt: sweepNow.Add(-48 * time.Hour),
	}
}

func buildSweeper(conflicts *conflict.MockConflictsService, checker *mockLeaderChecker) *Sweeper {
	sweeper := NewSweeper(conflicts, checker, apmtracing.NoopTracer{}, sweepSettings)
	sweeper.SetUTCGetter(func() time.Time {
		return sweepNow
	})
	return sweeper
}

func TestSweeper_Sweep(t *testing.T) {
	var closed []*conflict.Record
	conflicts := &conflict.MockConflictsService{
		ListPendingOverride: func() ([]conflict.Record, error) {
			return []conflict.Record{expiredRecord()}, nil
		},
		UpdateOverride: func(r *conflict.Record) (*conflict.Record, error) {
			closed = append(closed, r)
			return r, nil
		},
	}
	sweeper := buildSweeper(conflicts, &mockLeaderChecker{isLeader: true})

	err := sweeper.Sweep(context.Background())
	assert.NoError(t, err)
	assert.Len(t, closed, 1)
	assert.EqualValues(t, conflict.RESOLVED, closed[0].Status)
	assert.EqualValues(t, conflict.DISCARD, *closed[0].ResolutionAction)
	assert.EqualValues(t, sweepNow, *closed[0].ResolvedAt)
}

func TestSweeper_Sweep_RacedClose(t *testing.T) {
	conflicts := &conflict.MockConflictsService{
		ListPendingOverride: func() ([]conflict.Record, error) {
			return []conflict.Record{expiredRecord()}, nil
		},
		UpdateOverride: func(r *conflict.Record) (*conflict.Record, error) {
			return nil, conflict.AlreadyResolved{ID: r.ID}
		},
	}
	sweeper := buildSweeper(conflicts, &mockLeaderChecker{isLeader: true})

	// a record grabbed by a human resolver mid-sweep is not an error
	assert.NoError(t, sweeper.Sweep(context.Background()))
}

func TestSweeper_Sweep_NothingExpired(t *testing.T) {
	conflicts := &conflict.MockConflictsService{
		ListPendingOverride: func() ([]conflict.Record, error) {
			return nil, nil
		},
	}
	sweeper := buildSweeper(conflicts, &mockLeaderChecker{isLeader: true})

	assert.NoError(t, sweeper.Sweep(context.Background()))
	assert.EqualValues(t, 0, conflicts.UpdateCalled)
}

func TestSweeper_runIfLeader_NotLeader(t *testing.T) {
	conflicts := &conflict.MockConflictsService{}
	sweeper := buildSweeper(conflicts, &mockLeaderChecker{isLeader: false})

	sweeper.runIfLeader()
	assert.EqualValues(t, 0, conflicts.ListPendingCalled)
}

func TestSweeper_runIfLeader_Leader(t *testing.T) {
	conflicts := &conflict.MockConflictsService{
		ListPendingOverride: func() ([]conflict.Record, error) {
			return nil, nil
		},
	}
	sweeper := buildSweeper(conflicts, &mockLeaderChecker{isLeader: true})

	sweeper.runIfLeader()
	assert.EqualValues(t, 1, conflicts.ListPendingCalled)
}
