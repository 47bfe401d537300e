package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
)

// Id for a task that has been persisted
type Id string

// Generates a random id
func GenerateId() Id {
	return Id(strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// Position of a task within its column. Fractional so that repositioning
// between two neighbours never needs to renumber the rest of the board.
type Position float64

// Fields is the user-editable payload of a task. The conflict engine treats
// it as opaque except for the fields listed in MergeableFields, which is what
// field-level merge and diff display operate on.
type Fields struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Assignee    string
	Position    Position
}

// A Task that has yet to be created. By is the actor creating it and
// becomes ModifiedBy of the stored version 1.
type NewTask struct {
	Board  board.Name
	Fields Fields
	By     *actor.Actor
}

// A Task that has already been persisted.
//
// A Task is identified uniquely by its ID and Board, and versioned according
// to its Metadata Version; ModifiedBy is the actor that produced the current
// version.
type Task struct {
	ID         Id
	Board      board.Name
	Fields     Fields
	ModifiedBy *actor.Actor
	Metadata   metadata.Metadata
}

// IntoModified applies the given Changes to the Task and records who did it
// and when. The version counter is not touched here: it belongs to the store
// and advances by exactly one on each successful conditional write.
func (t *Task) IntoModified(by actor.Actor, at metadata.ModifiedAt, changes Changes) {
	changes.Apply(&t.Fields)
	t.ModifiedBy = &by
	t.Metadata.ModifiedAt = at
}

// Changes is a partial update to a Task's Fields; nil members are left
// untouched.
type Changes struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Assignee    *string
	Position    *Position
}

func (c *Changes) Apply(f *Fields) {
	if c.Title != nil {
		f.Title = *c.Title
	}
	if c.Description != nil {
		f.Description = *c.Description
	}
	if c.Status != nil {
		f.Status = *c.Status
	}
	if c.Priority != nil {
		f.Priority = *c.Priority
	}
	if c.Assignee != nil {
		f.Assignee = *c.Assignee
	}
	if c.Position != nil {
		f.Position = *c.Position
	}
}

// IsEmpty returns true if applying the Changes would be a no-op.
func (c *Changes) IsEmpty() bool {
	return c.Title == nil &&
		c.Description == nil &&
		c.Status == nil &&
		c.Priority == nil &&
		c.Assignee == nil &&
		c.Position == nil
}

// FieldName names a single mergeable field of a Task.
type FieldName string

const (
	FieldTitle       FieldName = "title"
	FieldDescription FieldName = "description"
	FieldStatus      FieldName = "status"
	FieldPriority    FieldName = "priority"
)

// MergeableFields is the fixed, explicit list of fields that field-level
// merge and diff display iterate over. Extending the set is a schema change,
// not a runtime discovery.
var MergeableFields = []FieldName{
	FieldTitle,
	FieldDescription,
	FieldStatus,
	FieldPriority,
}

// ValueOf returns the value of a single mergeable field.
func (f *Fields) ValueOf(name FieldName) interface{} {
	switch name {
	case FieldTitle:
		return f.Title
	case FieldDescription:
		return f.Description
	case FieldStatus:
		return f.Status
	case FieldPriority:
		return f.Priority
	default:
		return nil
	}
}

// FieldDiff is one row of the field-by-field comparison shown to a user
// resolving a conflict.
type FieldDiff struct {
	Field    FieldName
	Changed  bool
	Current  interface{}
	Incoming interface{}
}

// DiffFields compares two Fields over the fixed MergeableFields list and
// returns one FieldDiff per tracked field, in declaration order.
func DiffFields(current Fields, incoming Fields) []FieldDiff {
	diffs := make([]FieldDiff, 0, len(MergeableFields))
	for _, name := range MergeableFields {
		currentValue := current.ValueOf(name)
		incomingValue := incoming.ValueOf(name)
		diffs = append(diffs, FieldDiff{
			Field:    name,
			Changed:  currentValue != incomingValue,
			Current:  currentValue,
			Incoming: incomingValue,
		})
	}
	return diffs
}

// Task status boilerplate galore
// The status of a Task that can be marshalled to and from JSON
type Status uint8

const (
	TODO Status = iota
	IN_PROGRESS
	DONE

	// Do not edit these
	todo       string = "todo"
	inProgress string = "in-progress"
	done       string = "done"
)

var statusToString = map[Status]string{
	TODO:        todo,
	IN_PROGRESS: inProgress,
	DONE:        done,
}

var statusToId = map[string]Status{
	todo:       TODO,
	inProgress: IN_PROGRESS,
	done:       DONE,
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
		return TODO, fmt.Errorf("invalid status: [%s]", s)
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

// Priority of a Task that can be marshalled to and from JSON
type Priority uint8

const (
	LOW Priority = iota
	NORMAL
	HIGH

	// Do not edit these
	low    string = "low"
	normal string = "normal"
	high   string = "high"
)

var priorityToString = map[Priority]string{
	LOW:    low,
	NORMAL: normal,
	HIGH:   high,
}

var priorityToId = map[string]Priority{
	low:    LOW,
	normal: NORMAL,
	high:   HIGH,
}

func (p Priority) String() string {
	return priorityToString[p]
}

// PriorityFromString returns the Priority for the given string form, erroring
// out on unknown values.
func PriorityFromString(s string) (Priority, error) {
	if found, ok := priorityToId[s]; ok {
		return found, nil
	} else {
		return LOW, fmt.Errorf("invalid priority: [%s]", s)
	}
}

// MarshalJSON marshals the enum as a quoted json string
func (p Priority) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(priorityToString[p])
	buffer.WriteString(`"`)
	return buffer.Bytes(), nil
}

// UnmarshalJSON unmashals a quoted json string to the enum value
func (p *Priority) UnmarshalJSON(b []byte) error {
	var j string
	err := json.Unmarshal(b, &j)
	if err != nil {
		return err
	}
	if found, ok := priorityToId[j]; ok {
		*p = found
		return nil
	} else {
		return fmt.Errorf("invalid priority: [%s]", string(b))
	}
}

