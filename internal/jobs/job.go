// Package jobs manages the lifecycle of asynchronous image-analysis
// requests: a job is persisted Pending before its inference attempt is
// scheduled, transitions exactly once to Completed or Failed, and is
// observed by clients through read-only status snapshots.
package jobs

import (
	"time"

	"github.com/brainwise-app/brainwise-api/internal/inference"
)

// Status is the job lifecycle state. Pending is the only non-terminal
// state; Completed and Failed are final.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the persisted record of one analysis request. After the terminal
// transition it never changes again.
type Job struct {
	ID          string                `json:"jobId"`
	OwnerID     string                `json:"ownerId,omitempty"`
	ScanType    inference.ScanType    `json:"scanType"`
	InputRef    string                `json:"inputRef"`
	Status      Status                `json:"status"`
	Result      *inference.ScanResult `json:"result,omitempty"`
	Error       string                `json:"error,omitempty"`
	SubmittedAt time.Time             `json:"submittedAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
}
