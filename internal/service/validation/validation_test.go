package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutora/backend/internal/domain"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	From  string `json:"from" validate:"hhmm"`
	Role  string `json:"role" validate:"role"`
	Items []item `json:"items" validate:"dive"`
}

type item struct {
	Day int `json:"day_of_week" validate:"gte=0,lte=6"`
}

func TestCheck(t *testing.T) {
	v := New()

	valid := sample{Name: "ok", From: "09:30", Role: "student", Items: []item{{Day: 6}}}
	require.NoError(t, Check(v, valid))

	tests := []struct {
		name string
		in   sample
		msg  string
	}{
		{name: "required", in: sample{From: "09:30", Role: "student"}, msg: "name is required"},
		{name: "max", in: sample{Name: "toolong", From: "09:30", Role: "student"}, msg: "name must be at most 5 characters"},
		{name: "hhmm", in: sample{Name: "ok", From: "9.30", Role: "student"}, msg: "from must be a time of day in HH:MM form"},
		{name: "role", in: sample{Name: "ok", From: "09:30", Role: "admin"}, msg: "role must be student or instructor"},
		{name: "nested", in: sample{Name: "ok", From: "09:30", Role: "student", Items: []item{{Day: 7}}}, msg: "items[0].day_of_week must be at most 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(v, tt.in)
			require.Error(t, err)
			assert.Equal(t, domain.KindUnprocessable, domain.KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}
