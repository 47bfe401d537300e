package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func namePtr(name Name) *Name {
	return &name
}

func TestBoardNameFromString(t *testing.T) {
	type args struct {
		s string
	}
	tests := []struct {
		name    string
		args    args
		want    *Name
		wantErr bool
	}{
		{
			name: "must not have illegal chars",
			args: args{
				"board?name",
			},
			wantErr: true,
		},
		{
			name: "must not have '#'",
			args: args{
				"board#name",
			},
			wantErr: true,
		},
		{
			name: "must not have ':'",
			args: args{
				"board:name",
			},
			wantErr: true,
		},
		{
			name: "must not start with _",
			args: args{
				"_boardname",
			},
			wantErr: true,
		},
		{
			name: "must not start with -",
			args: args{
				"-boardname",
			},
			wantErr: true,
		},
		{
			name: "must not start with +",
			args: args{
				"+boardname",
			},
			wantErr: true,
		},
		{
			name: "must not be .",
			args: args{
				".",
			},
			wantErr: true,
		},
		{
			name: "must not be ..",
			args: args{
				"..",
			},
			wantErr: true,
		},
		{
			name: "must not be empty",
			args: args{
				"",
			},
			wantErr: true,
		},
		{
			name: "must not have upper case chars",
			args: args{
				"boardName",
			},
			wantErr: true,
		},
		{
			name: "simple lower case names are fine",
			args: args{
				"sprint-23",
			},
			want: namePtr("sprint-23"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NameFromString(tt.args.s)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.EqualValues(t, tt.want, got)
			}
		})
	}
}
