package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIDAcceptsNumberAndString(t *testing.T) {
	cases := map[string]RecordID{
		`42`:     "42",
		`"42"`:   "42",
		`"ab-c"`: "ab-c",
		`null`:   "",
		`1.5e3`:  "1.5e3",
	}
	for raw, want := range cases {
		var id RecordID
		require.NoError(t, json.Unmarshal([]byte(raw), &id), raw)
		assert.Equal(t, want, id, raw)
	}

	var id RecordID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestHistoryRecordJSONFieldNames(t *testing.T) {
	var rec HistoryRecord
	raw := `{"id":7,"projectType":"web-app","status":"Completed","createdAt":"2024-05-01T10:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, RecordID("7"), rec.ID)
	assert.Equal(t, "web-app", rec.ProjectType)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, 2024, rec.CreatedAt.Year())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","projectType":"web-app","status":"Completed","createdAt":"2024-05-01T10:00:00Z"}`, string(out))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusFailed.Valid())
	assert.False(t, Status("Done").Valid())
}
