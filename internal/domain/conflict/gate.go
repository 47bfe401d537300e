package conflict

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
	"github.com/kalyan021004/todoboard/internal/domain/task"
)

// Outcome of a gated write: exactly one of Task or Conflict is set. A
// conflict is not an error; it is a first-class result the caller must
// handle.
type Outcome struct {
	Task     *task.Task
	Conflict *Record
}

// Admitted returns true if the write went through.
func (o *Outcome) Admitted() bool {
	return o.Conflict == nil
}

// Gate is the admission check in front of every mutating operation on a
// task except creation (a brand-new task has no prior version to race
// against) and conflict resolution itself.
//
// Its contract: a write that claims a stale base version never touches the
// stored task; it produces a persisted conflict Record and a best-effort
// notification to both involved writers instead.
type Gate struct {
	tasks     task.Service
	conflicts Service
	notifier  Notifier
	getUTC    func() time.Time // for mocking
}

// NewGate builds a Gate. All collaborators are explicit constructor
// dependencies, including the notifier.
func NewGate(tasks task.Service, conflicts Service, notifier Notifier) *Gate {
	return &Gate{
		tasks:     tasks,
		conflicts: conflicts,
		notifier:  notifier,
		getUTC: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SetUTCGetter is for testing
func (g *Gate) SetUTCGetter(getter func() time.Time) {
	g.getUTC = getter
}

// Update admits or rejects an update to the task's fields.
//
// claimed is the base version the client read before editing; base is the
// client's last-read copy if it declared one. On admission the task is
// stored with the changes applied and its version advanced by exactly one.
func (g *Gate) Update(ctx context.Context, boardName board.Name, taskId task.Id, claimed metadata.Version, changes task.Changes, base *Snapshot, by actor.Actor) (*Outcome, error) {
	return g.admit(ctx, boardName, taskId, claimed, UPDATE, changes, base, by)
}

// Reposition admits or rejects a move of the task to a new position. It is
// an ordinary gated write over the position field.
func (g *Gate) Reposition(ctx context.Context, boardName board.Name, taskId task.Id, claimed metadata.Version, position task.Position, base *Snapshot, by actor.Actor) (*Outcome, error) {
	return g.admit(ctx, boardName, taskId, claimed, REPOSITION, task.Changes{Position: &position}, base, by)
}

// Delete admits or rejects a deletion of the task.
func (g *Gate) Delete(ctx context.Context, boardName board.Name, taskId task.Id, claimed metadata.Version, base *Snapshot, by actor.Actor) (*Outcome, error) {
	current, err := g.tasks.Get(ctx, boardName, taskId)
	if err != nil {
		return nil, err
	}
	if claimed != current.Metadata.Version {
		return g.divert(ctx, current, claimed, DELETE, current.Fields, base, by)
	}
	if err := g.tasks.Delete(ctx, current); err != nil {
		if _, lostSwap := err.(task.InvalidVersion); lostSwap {
			// Raced between our read and the conditional delete; re-read and
			// take the conflict path against the fresher state.
			return g.reReadAndDivert(ctx, boardName, taskId, claimed, DELETE, current.Fields, base, by)
		}
		return nil, err
	}
	deleted := *current
	return &Outcome{Task: &deleted}, nil
}

func (g *Gate) admit(ctx context.Context, boardName board.Name, taskId task.Id, claimed metadata.Version, op Op, changes task.Changes, base *Snapshot, by actor.Actor) (*Outcome, error) {
	current, err := g.tasks.Get(ctx, boardName, taskId)
	if err != nil {
		return nil, err
	}

	attempted := current.Fields
	changes.Apply(&attempted)

	if claimed != current.Metadata.Version {
		return g.divert(ctx, current, claimed, op, attempted, base, by)
	}

	updated := *current
	updated.IntoModified(by, metadata.ModifiedAt(g.getUTC()), changes)
	saved, err := g.tasks.Update(ctx, &updated)
	if err != nil {
		if _, lostSwap := err.(task.InvalidVersion); lostSwap {
			return g.reReadAndDivert(ctx, boardName, taskId, claimed, op, attempted, base, by)
		}
		return nil, err
	}
	return &Outcome{Task: saved}, nil
}

// reReadAndDivert handles the narrow race where the stored task moved
// between the gate's read and its conditional write: the store refused the
// swap, so fetch the fresh state and record the conflict against that.
func (g *Gate) reReadAndDivert(ctx context.Context, boardName board.Name, taskId task.Id, claimed metadata.Version, op Op, attempted task.Fields, base *Snapshot, by actor.Actor) (*Outcome, error) {
	fresh, err := g.tasks.Get(ctx, boardName, taskId)
	if err != nil {
		if _, gone := err.(task.NotFound); gone {
			// Lost the swap to a concurrent delete. Nothing left to
			// conflict against.
			return nil, task.NotFound{ID: taskId, BoardName: boardName}
		}
		return nil, err
	}
	return g.divert(ctx, fresh, claimed, op, attempted, base, by)
}

func (g *Gate) divert(ctx context.Context, current *task.Task, claimed metadata.Version, op Op, attempted task.Fields, base *Snapshot, by actor.Actor) (*Outcome, error) {
	now := g.getUTC()
	incoming := Snapshot{
		Data:       attempted,
		Version:    claimed,
		ModifiedAt: now,
		ModifiedBy: &actor.Actor{ID: by.ID, Name: by.Name},
	}
	currentSnapshot := Snapshot{
		Data:       current.Fields,
		Version:    current.Metadata.Version,
		ModifiedAt: time.Time(current.Metadata.ModifiedAt),
		ModifiedBy: current.ModifiedBy,
	}
	record := NewDetected(current.Board, current.ID, op, base, incoming, currentSnapshot, now)
	persisted, err := g.conflicts.Create(ctx, &record)
	if err != nil {
		// Persistence failures are transient infra errors: the caller gets
		// them loudly, nothing silently dropped, nothing retried.
		return nil, err
	}

	g.notifier.NotifyDetected(persisted)

	if log.Info().Enabled() {
		log.Info().
			Str("board", string(current.Board)).
			Str("task_id", string(current.ID)).
			Str("conflict_id", string(persisted.ID)).
			Uint64("claimed_version", uint64(claimed)).
			Uint64("stored_version", uint64(current.Metadata.Version)).
			Msg("Version mismatch diverted to conflict")
	}
	return &Outcome{Conflict: persisted}, nil
}
