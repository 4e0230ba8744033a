package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePriority(t *testing.T) {
	for _, p := range Priorities {
		got, err := ParsePriority(string(p))
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	}

	for _, bad := range []string{"", "urgent", "HIGH", " low"} {
		_, err := ParsePriority(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePriority_Message(t *testing.T) {
	_, err := ParsePriority("urgent")
	assert.EqualError(t, err, "Invalid priority entry 'urgent': must be one of 'high', 'medium', 'low', 'default'")
}

func TestTask_TitleOrEmpty(t *testing.T) {
	title := "groceries"
	assert.Equal(t, "", (&Task{}).TitleOrEmpty())
	assert.Equal(t, "groceries", (&Task{Title: &title}).TitleOrEmpty())
}

func TestNullString_UnmarshalJSON(t *testing.T) {
	type payload struct {
		Title NullString `json:"title"`
	}

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *string
		wantErr   bool
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"title":null}`, wantSet: true},
		{name: "empty", body: `{"title":""}`, wantSet: true, wantValue: StringValue("").Value},
		{name: "value", body: `{"title":"groceries"}`, wantSet: true, wantValue: StringValue("groceries").Value},
		{name: "wrong type", body: `{"title":5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := json.Unmarshal([]byte(tt.body), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSet, p.Title.Set)
			assert.Equal(t, tt.wantValue, p.Title.Value)
		})
	}
}
