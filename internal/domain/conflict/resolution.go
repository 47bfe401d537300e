package conflict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
	"github.com/kalyan021004/todoboard/internal/domain/task"
)

// Resolution is a human decision about a pending Record.
//
// For MERGE, FieldSelections picks a side per tracked field; fields without
// a selection keep the current/server value. MergedData, when set, wins over
// FieldSelections entirely and is applied as the final payload.
type Resolution struct {
	Action          ResolutionAction
	FieldSelections map[task.FieldName]FieldChoice
	MergedData      *task.Fields
}

// Result of a successful resolution. Task is nil when nothing is stored
// anymore (an applied delete).
type Result struct {
	Conflict *Record
	Task     *task.Task
}

// Resolver turns a Resolution into at most one additional write against the
// task store and closes the Record.
//
// The applying write is re-validated against the live stored version at
// resolution time, not against the snapshot taken at detection: if the task
// moved on since detection the resolver works from (and swaps against) the
// newer state rather than blindly overwriting it.
type Resolver struct {
	tasks     task.Service
	conflicts Service
	// How many times the applying write is re-run after losing the swap to
	// an unrelated concurrent writer.
	swapRetryTimes uint
	getUTC         func() time.Time // for mocking
}

func NewResolver(tasks task.Service, conflicts Service, swapRetryTimes uint) *Resolver {
	return &Resolver{
		tasks:          tasks,
		conflicts:      conflicts,
		swapRetryTimes: swapRetryTimes,
		getUTC: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SetUTCGetter is for testing
func (r *Resolver) SetUTCGetter(getter func() time.Time) {
	r.getUTC = getter
}

// Resolve closes the Record identified by conflictId according to the given
// Resolution.
//
// Replays are rejected: a Record that is already resolved (or gets resolved
// concurrently while we work) comes back as AlreadyResolved and nothing is
// double-applied. The write itself is the task store's conditional swap, so
// at most one resolver's payload ever lands.
func (r *Resolver) Resolve(ctx context.Context, conflictId Id, resolution Resolution, by actor.Actor) (*Result, error) {
	record, err := r.conflicts.Get(ctx, conflictId)
	if err != nil {
		return nil, err
	}
	if record.Status != PENDING {
		return nil, AlreadyResolved{ID: record.ID}
	}

	var resolvedTask *task.Task
	var resolvedData *task.Fields

	switch resolution.Action {
	case DISCARD:
		// Current wins; nothing is written, the version does not advance.
		live, err := r.tasks.Get(ctx, record.Board, record.TaskId)
		if err != nil {
			return nil, err
		}
		resolvedTask = live
		data := live.Fields
		resolvedData = &data
	case OVERWRITE:
		if record.Op == DELETE {
			resolvedTask, err = r.applyDelete(ctx, record, by)
			if err != nil {
				return nil, err
			}
			// Applied delete: nothing stored, nothing to echo back.
		} else {
			data := record.Incoming.Data
			resolvedTask, err = r.applyWrite(ctx, record, func(live *task.Task) task.Fields {
				return data
			}, by)
			if err != nil {
				return nil, err
			}
			resolvedData = &data
		}
	case MERGE:
		resolvedTask, err = r.applyWrite(ctx, record, func(live *task.Task) task.Fields {
			if resolution.MergedData != nil {
				return *resolution.MergedData
			}
			return MergeFields(live.Fields, record.Incoming.Data, resolution.FieldSelections)
		}, by)
		if err != nil {
			return nil, err
		}
		data := resolvedTask.Fields
		resolvedData = &data
	default:
		return nil, fmt.Errorf("unknown resolution action: [%v]", resolution.Action)
	}

	closed := *record
	if err := closed.IntoResolved(resolution.Action, r.getUTC(), resolvedData); err != nil {
		return nil, err
	}
	persisted, err := r.conflicts.Update(ctx, &closed)
	if err != nil {
		return nil, err
	}

	if log.Info().Enabled() {
		log.Info().
			Str("conflict_id", string(persisted.ID)).
			Str("task_id", string(persisted.TaskId)).
			Str("action", resolution.Action.String()).
			Str("resolved_by", string(by.ID)).
			Msg("Conflict resolved")
	}
	return &Result{Conflict: persisted, Task: resolvedTask}, nil
}

// applyWrite performs the one conditional write of a resolution, re-reading
// the live task so the swap is against the version stored right now. Losing
// the swap to an unrelated concurrent writer in the window between our read
// and write re-runs the read-and-swap up to swapRetryTimes more times.
func (r *Resolver) applyWrite(ctx context.Context, record *Record, payload func(live *task.Task) task.Fields, by actor.Actor) (*task.Task, error) {
	runUpdate := func() (*task.Task, error) {
		live, err := r.tasks.Get(ctx, record.Board, record.TaskId)
		if err != nil {
			return nil, err
		}
		updated := *live
		updated.Fields = payload(live)
		updated.ModifiedBy = &actor.Actor{ID: by.ID, Name: by.Name}
		updated.Metadata.ModifiedAt = metadata.ModifiedAt(r.getUTC())
		return r.tasks.Update(ctx, &updated)
	}
	result, err := runUpdate()
	for retries := r.swapRetryTimes; retries > 0; retries-- {
		if _, lostSwap := err.(task.InvalidVersion); !lostSwap {
			break
		}
		result, err = runUpdate()
	}
	return result, err
}

func (r *Resolver) applyDelete(ctx context.Context, record *Record, by actor.Actor) (*task.Task, error) {
	runDelete := func() error {
		live, err := r.tasks.Get(ctx, record.Board, record.TaskId)
		if err != nil {
			return err
		}
		return r.tasks.Delete(ctx, live)
	}
	err := runDelete()
	for retries := r.swapRetryTimes; retries > 0; retries-- {
		if _, lostSwap := err.(task.InvalidVersion); !lostSwap {
			break
		}
		err = runDelete()
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// MergeFields combines the stored and the conflicting payload field by
// field over the fixed tracked list. Choices are from the perspective of
// the stored state: MINE keeps the current/server value, THEIRS takes the
// incoming writer's value. Unselected fields keep the current value, and
// untracked fields always keep the current value.
func MergeFields(current task.Fields, incoming task.Fields, selections map[task.FieldName]FieldChoice) task.Fields {
	merged := current
	for _, name := range task.MergeableFields {
		if choice, ok := selections[name]; ok && choice == THEIRS {
			copyField(&merged, incoming, name)
		}
	}
	return merged
}

func copyField(into *task.Fields, from task.Fields, name task.FieldName) {
	switch name {
	case task.FieldTitle:
		into.Title = from.Title
	case task.FieldDescription:
		into.Description = from.Description
	case task.FieldStatus:
		into.Status = from.Status
	case task.FieldPriority:
		into.Priority = from.Priority
	}
}

// FieldChoice boilerplate
// Which side of a conflict a merge selection keeps, marshallable to and
// from JSON
type FieldChoice uint8

const (
	MINE FieldChoice = iota
	THEIRS

	// Do not edit these
	mine   string = "mine"
	theirs string = "theirs"
)

var choiceToString = map[FieldChoice]string{
	MINE:   mine,
	THEIRS: theirs,
}

var choiceToId = map[string]FieldChoice{
	mine:   MINE,
	theirs: THEIRS,
}

func (c FieldChoice) String() string {
	return choiceToString[c]
}

// MarshalJSON marshals the enum as a quoted json string
func (c FieldChoice) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(choiceToString[c])
	buffer.WriteString(`"`)
	return buffer.Bytes(), nil
}

// UnmarshalJSON unmashals a quoted json string to the enum value
func (c *FieldChoice) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	if found, ok := choiceToId[j]; ok {
		*c = found
		return nil
	} else {
		return fmt.Errorf("invalid field choice: [%s]", string(b))
	}
}
