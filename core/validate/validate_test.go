package validate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/runmatrix/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBatch(rows ...schema.Record) *schema.Batch {
	b := schema.NewBatch(schema.RequiredRawColumns...)
	for _, r := range rows {
		b.Append(r)
	}
	return b
}

func TestRaw(t *testing.T) {
	t.Run("empty batch fails", func(t *testing.T) {
		v := Raw(nil)
		assert.False(t, v.OK)
		assert.Nil(t, v.Payload)

		v = Raw(schema.NewBatch(schema.RequiredRawColumns...))
		assert.False(t, v.OK)
	})

	t.Run("missing required column fails", func(t *testing.T) {
		b := schema.NewBatch(schema.ColFlowName, schema.ColStartedAt)
		b.Append(schema.Record{schema.ColFlowName: "WF - A", schema.ColStartedAt: "2024-05-01 10:00:00"})
		v := Raw(b)
		assert.False(t, v.OK)
		assert.Nil(t, v.Payload)
		assert.Contains(t, v.Message, "flowowner")
		assert.Contains(t, v.Message, "taskstatus")
	})

	t.Run("repairs rows and drops bad timestamps", func(t *testing.T) {
		b := rawBatch(
			schema.Record{schema.ColFlowName: "WF - A", schema.ColFlowOwner: "ops", schema.ColStartedAt: "2024-05-01 10:00:00", schema.ColTaskStatus: "completed"},
			schema.Record{schema.ColFlowName: "WF - A", schema.ColFlowOwner: nil, schema.ColStartedAt: "2024-05-01T11:30:00Z", schema.ColTaskStatus: nil},
			schema.Record{schema.ColFlowName: "WF - A", schema.ColFlowOwner: "ops", schema.ColStartedAt: "not a time", schema.ColTaskStatus: "Failed"},
		)
		v := Raw(b)
		require.True(t, v.OK)
		assert.Equal(t, 1, v.Dropped)
		require.Equal(t, 2, v.Payload.Len())
		assert.True(t, v.Payload.Has(schema.ColTriggerType))
		assert.True(t, v.Payload.Has(schema.ColWasSuccessful))

		first, second := v.Payload.Rows[0], v.Payload.Rows[1]
		assert.IsType(t, time.Time{}, first[schema.ColStartedAt])
		assert.Equal(t, 1, first[schema.ColWasSuccessful])
		assert.Equal(t, schema.UnknownTrigger, first[schema.ColTriggerType])
		assert.Equal(t, schema.StatusNoRun, second[schema.ColTaskStatus])
		assert.Equal(t, schema.Unknown, second[schema.ColFlowOwner])
		assert.Equal(t, 0, second[schema.ColWasSuccessful])

		assert.Equal(t, "not a time", b.Rows[2][schema.ColStartedAt], "input is not modified")
	})

	t.Run("explicit success flag wins", func(t *testing.T) {
		b := rawBatch(schema.Record{schema.ColFlowName: "A", schema.ColFlowOwner: "o", schema.ColStartedAt: "2024-05-01", schema.ColTaskStatus: "Failed", schema.ColWasSuccessful: "1"})
		v := Raw(b)
		require.True(t, v.OK)
		assert.Equal(t, 1, v.Payload.Rows[0][schema.ColWasSuccessful])
	})

	t.Run("all rows dropped", func(t *testing.T) {
		b := rawBatch(schema.Record{schema.ColFlowName: "A", schema.ColFlowOwner: "o", schema.ColStartedAt: "??", schema.ColTaskStatus: "Failed"})
		v := Raw(b)
		assert.False(t, v.OK)
		require.NotNil(t, v.Payload)
		assert.True(t, v.Payload.Empty())
		assert.Equal(t, 1, v.Dropped)
	})
}

func TestNormalized(t *testing.T) {
	t.Run("empty fails", func(t *testing.T) {
		v := Normalized(schema.NewBatch())
		assert.False(t, v.OK)
		assert.Nil(t, v.Payload)
	})

	t.Run("synthesizes missing columns", func(t *testing.T) {
		b := schema.NewBatch()
		b.Append(schema.Record{
			schema.ColFlowOwner:  "svc",
			schema.ColStartedAt:  time.Date(2024, 5, 1, 7, 15, 0, 0, time.UTC),
			schema.ColTaskStatus: "Succeeded",
		})
		v := Normalized(b)
		require.True(t, v.OK)
		r := v.Payload.Rows[0]
		assert.Equal(t, "svc", r[schema.ColOwner])
		assert.Equal(t, schema.Unknown, r[schema.ColProject])
		assert.Equal(t, schema.Unknown, r[schema.ColFlowName])
		assert.Equal(t, 7, r[schema.ColHour])
		assert.Equal(t, "svc | Unknown | Unknown", r[schema.ColDisplayKey])
		assert.InDelta(t, 100.0, r[schema.ColSuccessRate], 0.001)
		assert.Contains(t, v.Message, "synthesizing")
		assert.False(t, b.Has(schema.ColOwner), "input is not modified")
	})

	t.Run("complete batch passes untouched", func(t *testing.T) {
		b := schema.NewBatch()
		b.Append(schema.Record{
			schema.ColOwner: "Ops", schema.ColProject: "WF", schema.ColFlowName: "WF - A",
			schema.ColTaskStatus: "Failed", schema.ColStartedAt: time.Now(), schema.ColHour: 3,
			schema.ColDisplayKey: "Ops | WF | WF - A", schema.ColSuccessRate: 0.0,
		})
		v := Normalized(b)
		require.True(t, v.OK)
		assert.Equal(t, "normalized batch is valid", v.Message)
	})
}

func TestMatrix(t *testing.T) {
	t.Run("cells not a mapping", func(t *testing.T) {
		v := Matrix([]string{"x"}, []string{"x"}, []int{1})
		assert.False(t, v.OK)
		require.NotNil(t, v.Payload)
		assert.Empty(t, v.Payload.Entities)
		assert.Equal(t, schema.DayHours(), v.Payload.Hours)
	})

	t.Run("empty input falls back to full day axis", func(t *testing.T) {
		v := Matrix(map[string]any{}, []any{}, []any{0, 1, 2})
		assert.False(t, v.OK)
		require.NotNil(t, v.Payload)
		assert.Empty(t, v.Payload.Entities)
		assert.Empty(t, v.Payload.Cells)
		assert.Len(t, v.Payload.Hours, 24)
	})

	t.Run("recovers entities from cells keys", func(t *testing.T) {
		cells := map[string]map[int]string{"b": {1: "Failed"}, "a": {}}
		v := Matrix(cells, "not a list", nil)
		require.True(t, v.OK)
		assert.Equal(t, []string{"a", "b"}, v.Payload.Entities)
		assert.Equal(t, "Failed", v.Payload.Cells["b"][1])
		assert.Len(t, v.Payload.Cells["a"], 24)
	})

	t.Run("filters hours and fills defaults", func(t *testing.T) {
		cells := map[string]any{
			"flow": map[int]any{2: "Running", 5: 42, 7: ""},
		}
		v := Matrix(cells, []any{"flow", "", 3, "flow"}, []any{2, 5, 7, 24, -1, "3"})
		require.True(t, v.OK)
		assert.Equal(t, []int{2, 5, 7}, v.Payload.Hours)
		assert.Equal(t, []string{"flow"}, v.Payload.Entities)
		assert.Equal(t, map[int]string{2: "Running", 5: schema.StatusNoRun, 7: schema.StatusNoRun}, v.Payload.Cells["flow"])
	})

	t.Run("no valid hours means full day", func(t *testing.T) {
		v := Matrix(map[string]any{"a": map[string]any{}}, []string{"a"}, []any{99, "x"})
		require.True(t, v.OK)
		assert.Equal(t, schema.DayHours(), v.Payload.Hours)
	})

	t.Run("no valid names", func(t *testing.T) {
		v := Matrix(map[string]any{}, []any{"", 5}, []int{1, 2})
		assert.False(t, v.OK)
		require.NotNil(t, v.Payload)
		assert.Empty(t, v.Payload.Entities)
		assert.Equal(t, []int{1, 2}, v.Payload.Hours)
	})

	t.Run("decoded json document", func(t *testing.T) {
		doc := `{"cells": {"Ops | WF | WF - A": {"2": "Failed", "x": "Running"}}, "entities": ["Ops | WF | WF - A"], "hours": [2, 3]}`
		var in map[string]any
		require.NoError(t, json.Unmarshal([]byte(doc), &in))

		v := Matrix(in["cells"], in["entities"], in["hours"])
		require.True(t, v.OK)
		assert.Equal(t, []int{2, 3}, v.Payload.Hours)
		assert.Equal(t, "Failed", v.Payload.Status("Ops | WF | WF - A", 2))
		assert.Equal(t, schema.StatusNoRun, v.Payload.Status("Ops | WF | WF - A", 3))
	})
}
