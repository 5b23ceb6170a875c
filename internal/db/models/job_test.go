package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      JobStatus
		stringValue string
		terminal    bool
	}{
		{name: "Unknown status", status: JobStatusUnknown, stringValue: "unknown"},
		{name: "Pending status", status: JobStatusPending, stringValue: "pending"},
		{name: "Processing status", status: JobStatusProcessing, stringValue: "processing"},
		{name: "Done status", status: JobStatusDone, stringValue: "done", terminal: true},
		{name: "Error status", status: JobStatusError, stringValue: "error", terminal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stringValue, tt.status.String())
			assert.Equal(t, tt.terminal, tt.status.Terminal())

			parsed, err := ParseJobStatus(tt.stringValue)
			require.NoError(t, err)
			assert.Equal(t, tt.status, parsed)

			data, err := json.Marshal(tt.status)
			require.NoError(t, err)
			assert.Equal(t, `"`+tt.stringValue+`"`, string(data))

			var roundTripped JobStatus
			require.NoError(t, json.Unmarshal(data, &roundTripped))
			assert.Equal(t, tt.status, roundTripped)
		})
	}
}

func TestParseJobStatusInvalid(t *testing.T) {
	_, err := ParseJobStatus("cancelled")
	assert.Error(t, err)
}

func TestJobBeforeCreateAssignsUID(t *testing.T) {
	job := &Job{}
	require.NoError(t, job.BeforeCreate(nil))
	assert.Len(t, job.UID, 36)

	// An explicit UID is never overwritten
	fixed := &Job{UID: "fixed"}
	require.NoError(t, fixed.BeforeCreate(nil))
	assert.Equal(t, "fixed", fixed.UID)
}

func TestJobStatusStringOutOfRange(t *testing.T) {
	assert.Equal(t, "unknown", JobStatus(42).String())
}
