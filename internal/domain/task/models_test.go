package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
)

func strPtr(s string) *string {
	return &s
}

func statusPtr(s Status) *Status {
	return &s
}

func priorityPtr(p Priority) *Priority {
	return &p
}

func TestChanges_Apply(t *testing.T) {
	type args struct {
		changes Changes
		fields  Fields
	}
	tests := []struct {
		name string
		args args
		want Fields
	}{
		{
			name: "empty changes leave fields untouched",
			args: args{
				changes: Changes{},
				fields: Fields{
					Title:  "write the report",
					Status: IN_PROGRESS,
				},
			},
			want: Fields{
				Title:  "write the report",
				Status: IN_PROGRESS,
			},
		},
		{
			name: "set members overwrite, unset members do not",
			args: args{
				changes: Changes{
					Title:  strPtr("write the long report"),
					Status: statusPtr(DONE),
				},
				fields: Fields{
					Title:    "write the report",
					Status:   IN_PROGRESS,
					Priority: HIGH,
					Assignee: "sam",
				},
			},
			want: Fields{
				Title:    "write the long report",
				Status:   DONE,
				Priority: HIGH,
				Assignee: "sam",
			},
		},
		{
			name: "position can be set on its own",
			args: args{
				changes: Changes{
					Position: func() *Position { p := Position(1.5); return &p }(),
				},
				fields: Fields{
					Title: "t",
				},
			},
			want: Fields{
				Title:    "t",
				Position: 1.5,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := tt.args.fields
			tt.args.changes.Apply(&fields)
			assert.EqualValues(t, tt.want, fields)
		})
	}
}

func TestChanges_IsEmpty(t *testing.T) {
	assert.True(t, (&Changes{}).IsEmpty())
	assert.False(t, (&Changes{Title: strPtr("t")}).IsEmpty())
	assert.False(t, (&Changes{Priority: priorityPtr(LOW)}).IsEmpty())
}

func TestTask_IntoModified(t *testing.T) {
	now := time.Now().UTC()
	subject := Task{
		ID:    "t1",
		Board: "b",
		Fields: Fields{
			Title:  "old",
			Status: TODO,
		},
		Metadata: metadata.Metadata{
			Version: 3,
		},
	}
	by := actor.Actor{ID: "u1", Name: "Sam"}
	subject.IntoModified(by, metadata.ModifiedAt(now), Changes{Title: strPtr("new")})
	assert.EqualValues(t, "new", subject.Fields.Title)
	assert.EqualValues(t, &by, subject.ModifiedBy)
	assert.EqualValues(t, metadata.ModifiedAt(now), subject.Metadata.ModifiedAt)
	// the counter belongs to the store; applying changes must not touch it
	assert.EqualValues(t, 3, subject.Metadata.Version)
}

func TestDiffFields(t *testing.T) {
	current := Fields{
		Title:    "A",
		Status:   TODO,
		Priority: NORMAL,
	}
	incoming := Fields{
		Title:    "B",
		Status:   IN_PROGRESS,
		Priority: NORMAL,
	}
	diffs := DiffFields(current, incoming)
	assert.Len(t, diffs, len(MergeableFields))
	byField := make(map[FieldName]FieldDiff)
	for _, d := range diffs {
		byField[d.Field] = d
	}
	assert.True(t, byField[FieldTitle].Changed)
	assert.EqualValues(t, "A", byField[FieldTitle].Current)
	assert.EqualValues(t, "B", byField[FieldTitle].Incoming)
	assert.True(t, byField[FieldStatus].Changed)
	assert.False(t, byField[FieldPriority].Changed)
	assert.False(t, byField[FieldDescription].Changed)
}

func TestStatus_JsonRoundTrip(t *testing.T) {
	for s := range statusToString {
		asBytes, err := json.Marshal(s)
		assert.NoError(t, err)
		var back Status
		assert.NoError(t, json.Unmarshal(asBytes, &back))
		assert.EqualValues(t, s, back)
	}
	var s Status
	assert.Error(t, json.Unmarshal([]byte(`"blocked"`), &s))
}

func TestPriority_JsonRoundTrip(t *testing.T) {
	for p := range priorityToString {
		asBytes, err := json.Marshal(p)
		assert.NoError(t, err)
		var back Priority
		assert.NoError(t, json.Unmarshal(asBytes, &back))
		assert.EqualValues(t, p, back)
	}
	var p Priority
	assert.Error(t, json.Unmarshal([]byte(`"urgent"`), &p))
}

func TestStatusFromString(t *testing.T) {
	got, err := StatusFromString("in-progress")
	assert.NoError(t, err)
	assert.EqualValues(t, IN_PROGRESS, got)
	_, err = StatusFromString("nope")
	assert.Error(t, err)
}

func TestPriorityFromString(t *testing.T) {
	got, err := PriorityFromString("high")
	assert.NoError(t, err)
	assert.EqualValues(t, HIGH, got)
	_, err = PriorityFromString("nope")
	assert.Error(t, err)
}
