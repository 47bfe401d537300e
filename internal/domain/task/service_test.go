package task

import (
	"testing"

	"github.com/kalyan021004/todoboard/internal/domain/board"
)

func TestNotFound_Error(t *testing.T) {
	type fields struct {
		ID        Id
		BoardName board.Name
	}
	tests := []struct {
		name   string
		fields fields
		want   string
	}{
		{
			name: "error string",
			fields: fields{
				ID:        "some id",
				BoardName: "b",
			},
			want: "Could not find [some id] on board [b]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NotFound{
				ID:        tt.fields.ID,
				BoardName: tt.fields.BoardName,
			}
			if got := e.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotFound_Id(t *testing.T) {
	e := NotFound{ID: "hello", BoardName: "b"}
	if got := e.Id(); got != "hello" {
		t.Errorf("Id() = %v, want %v", got, "hello")
	}
}

func TestInvalidVersion_Error(t *testing.T) {
	e := InvalidVersion{ID: "some id"}
	if got := e.Error(); got != "Version provided did not match persisted version for [some id]" {
		t.Errorf("unexpected Error() = %v", got)
	}
}

func TestInvalidVersion_Id(t *testing.T) {
	e := InvalidVersion{ID: "abc"}
	if got := e.Id(); got != "abc" {
		t.Errorf("Id() = %v, want %v", got, "abc")
	}
}

func TestAlreadyExists_Id(t *testing.T) {
	e := AlreadyExists{ID: "abc"}
	if got := e.Id(); got != "abc" {
		t.Errorf("Id() = %v, want %v", got, "abc")
	}
}
