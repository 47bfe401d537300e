// conflict holds the models and logic for detected write conflicts: the
// record of a divergence between what a writer believed was stored and what
// actually was, and the lifecycle that reconciles the two back into a single
// authoritative version.
package conflict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
	"github.com/kalyan021004/todoboard/internal/domain/task"
)

// Id for a conflict Record that has been persisted
type Id string

// Generates a random id
func GenerateId() Id {
	return Id(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// A Snapshot is one side of a detected divergence: a task payload together
// with the version it carried and who produced it when.
type Snapshot struct {
	Data       task.Fields
	Version    metadata.Version
	ModifiedAt time.Time
	ModifiedBy *actor.Actor
}

// A Record describes one detected divergence and its resolution lifecycle.
//
// Records are created only by the version gate on a version mismatch, move
// to RESOLVED only through the resolution protocol, and are never deleted;
// they double as the audit trail of every conflict the system ever saw.
// A second mismatch on the same task while one Record is still pending
// creates a new, independent Record.
type Record struct {
	ID     Id
	Board  board.Name
	TaskId task.Id

	// The operation the incoming writer attempted
	Op Op

	// The state the incoming writer believed was current. The data half is
	// only as good as what the client declared alongside its write; the
	// version is the claimed base version.
	Base Snapshot

	// What the incoming writer attempted to write, tagged with the claimed
	// (stale) base version.
	Incoming Snapshot

	// The actual stored state at detection time.
	Current Snapshot

	Status     Status
	DetectedAt time.Time

	ResolvedAt       *time.Time
	ResolutionAction *ResolutionAction
	ResolvedData     *task.Fields

	// Store-level CAS anchor for the single pending->resolved transition.
	StoreTerm metadata.StoreTerm
}

// NewDetected builds a pending Record for a freshly detected divergence.
//
// base may be nil when the client did not declare its last-read copy; the
// base snapshot then carries the claimed version with zero data.
func NewDetected(boardName board.Name, taskId task.Id, op Op, base *Snapshot, incoming Snapshot, current Snapshot, at time.Time) Record {
	var baseSnapshot Snapshot
	if base != nil {
		baseSnapshot = *base
	} else {
		baseSnapshot = Snapshot{
			Version:    incoming.Version,
			ModifiedAt: incoming.ModifiedAt,
		}
	}
	return Record{
		ID:         GenerateId(),
		Board:      boardName,
		TaskId:     taskId,
		Op:         op,
		Base:       baseSnapshot,
		Incoming:   incoming,
		Current:    current,
		Status:     PENDING,
		DetectedAt: at,
	}
}

// IntoResolved marks the Record as resolved with the given action and final
// payload. The only legal transition is PENDING -> RESOLVED; anything else
// returns AlreadyResolved so duplicate submissions are rejected instead of
// double-applied.
func (r *Record) IntoResolved(action ResolutionAction, at time.Time, resolvedData *task.Fields) error {
	if r.Status != PENDING {
		return AlreadyResolved{ID: r.ID}
	}
	r.Status = RESOLVED
	r.ResolvedAt = &at
	r.ResolutionAction = &action
	r.ResolvedData = resolvedData
	return nil
}

// FieldDiffs returns the field-by-field comparison between the stored state
// at detection time and what the incoming writer attempted, over the fixed
// mergeable field list. This is what a resolution prompt renders.
func (r *Record) FieldDiffs() []task.FieldDiff {
	return task.DiffFields(r.Current.Data, r.Incoming.Data)
}

// Op boilerplate
// The gated operation that triggered a conflict, marshallable to and from JSON
type Op uint8

const (
	UPDATE Op = iota
	DELETE
	REPOSITION

	// Do not edit these
	update     string = "update"
	deleteOp   string = "delete"
	reposition string = "reposition"
)

var opToString = map[Op]string{
	UPDATE:     update,
	DELETE:     deleteOp,
	REPOSITION: reposition,
}

var opToId = map[string]Op{
	update:     UPDATE,
	deleteOp:   DELETE,
	reposition: REPOSITION,
}

func (o Op) String() string {
	return opToString[o]
}

// OpFromString returns the Op for the given string form, erroring out on
// unknown values.
func OpFromString(s string) (Op, error) {
	if found, ok := opToId[s]; ok {
		return found, nil
	} else {
		return UPDATE, fmt.Errorf("invalid op: [%s]", s)
	}
}

// MarshalJSON marshals the enum as a quoted json string
func (o Op) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(opToString[o])
	buffer.WriteString(`"`)
	return buffer.Bytes(), nil
}

// UnmarshalJSON unmashals a quoted json string to the enum value
func (o *Op) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	if found, ok := opToId[j]; ok {
		*o = found
		return nil
	} else {
		return fmt.Errorf("invalid op: [%s]", string(b))
	}
}

// Status boilerplate
// The lifecycle status of a Record, marshallable to and from JSON
type Status uint8

const (
	PENDING Status = iota
	RESOLVED

	// Do not edit these
	pending  string = "pending"
	resolved string = "resolved"
)

var statusToString = map[Status]string{
	PENDING:  pending,
	RESOLVED: resolved,
}

var statusToId = map[string]Status{
	pending:  PENDING,
	resolved: RESOLVED,
}

func (s Status) String() string {
	return statusToString[s]
}

// StatusFromString returns the Status for the given string form, erroring
// out on unknown values.
func StatusFromString(s string) (Status, error) {
	if found, ok := statusToId[s]; ok {
		return found, nil
	} else {
		return PENDING, fmt.Errorf("invalid status: [%s]", s)
	}
}

// MarshalJSON marshals the enum as a quoted json string
func (s Status) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(statusToString[s])
	buffer.WriteString(`"`)
	return buffer.Bytes(), nil
}

// UnmarshalJSON unmashals a quoted json string to the enum value
func (s *Status) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	if found, ok := statusToId[j]; ok {
		*s = found
		return nil
	} else {
		return fmt.Errorf("invalid status: [%s]", string(b))
	}
}

// ResolutionAction boilerplate
// How a Record was resolved, marshallable to and from JSON
type ResolutionAction uint8

const (
	OVERWRITE ResolutionAction = iota
	DISCARD
	MERGE

	// Do not edit these
	overwrite string = "overwrite"
	discard   string = "discard"
	merge     string = "merge"
)

var actionToString = map[ResolutionAction]string{
	OVERWRITE: overwrite,
	DISCARD:   discard,
	MERGE:     merge,
}

var actionToId = map[string]ResolutionAction{
	overwrite: OVERWRITE,
	discard:   DISCARD,
	merge:     MERGE,
}

func (a ResolutionAction) String() string {
	return actionToString[a]
}

// ActionFromString returns the ResolutionAction for the given string form,
// erroring out on unknown values.
func ActionFromString(s string) (ResolutionAction, error) {
	if found, ok := actionToId[s]; ok {
		return found, nil
	} else {
		return OVERWRITE, fmt.Errorf("invalid resolution action: [%s]", s)
	}
}

// MarshalJSON marshals the enum as a quoted json string
func (a ResolutionAction) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(actionToString[a])
	buffer.WriteString(`"`)
	return buffer.Bytes(), nil
}

// UnmarshalJSON unmashals a quoted json string to the enum value
func (a *ResolutionAction) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	if found, ok := actionToId[j]; ok {
		*a = found
		return nil
	} else {
		return fmt.Errorf("invalid resolution action: [%s]", string(b))
	}
}
