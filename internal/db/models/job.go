package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// JobCreatedAtField is the database field name for the job creation timestamp
	JobCreatedAtField = "created_at"
	// JobStatusField is the database field name for the job status
	JobStatusField = "status"
)

// JobStatus represents the current state of a job in the pipeline
type JobStatus int

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = iota
	// JobStatusPending indicates the job is waiting to be picked up by the worker
	JobStatusPending
	// JobStatusProcessing indicates the job has been claimed and is running the pipeline
	JobStatusProcessing
	// JobStatusDone indicates the job finished and the artifact URL is set
	JobStatusDone
	// JobStatusError indicates the job failed and the error message is set
	JobStatusError
)

var jobStatusNames = []string{
	"unknown",
	"pending",
	"processing",
	"done",
	"error",
}

// Job is the unit of work tracked through the pipeline: a captured job
// posting that a tailored resume PDF is produced for. Records are created
// pending, mutated only by the worker, and never deleted.
type Job struct {
	gorm.Model
	// UID is the opaque public identifier assigned at creation. All external
	// interfaces address jobs by UID, never by the numeric primary key.
	UID          string     `json:"id" gorm:"not null;uniqueIndex;size:36"`
	SourceURL    string     `json:"source_url" gorm:"not null;type:text"`
	Description  string     `json:"description" gorm:"not null;type:text"`
	Status       JobStatus  `json:"status" gorm:"not null;index"`
	ArtifactURL  string     `json:"artifact_url,omitempty" gorm:"type:text"`
	ErrorMessage string     `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FailedAt     *time.Time `json:"failed_at,omitempty"`
}

// BeforeCreate assigns the public identifier.
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.UID == "" {
		j.UID = uuid.NewString()
	}
	return nil
}

// Terminal reports whether the status is one no transition may leave.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	for i, status := range jobStatusNames {
		if status == str {
			return JobStatus(i), nil
		}
	}
	return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
}

func (s JobStatus) String() string {
	if int(s) < 0 || int(s) >= len(jobStatusNames) {
		return jobStatusNames[JobStatusUnknown]
	}
	return jobStatusNames[s]
}

// MarshalJSON implements the json.Marshaler interface for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}
