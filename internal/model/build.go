package model

import "time"

// BuildStatus represents the lifecycle state of a server-side build.
type BuildStatus string

// Build status values as reported by the server.
const (
	BuildQueued    BuildStatus = "QUEUED"
	BuildBuilding  BuildStatus = "BUILDING"
	BuildCompleted BuildStatus = "COMPLETED"
	BuildFailed    BuildStatus = "FAILED"
	BuildCanceled  BuildStatus = "CANCELED"
)

// IsTerminal reports whether the build has stopped progressing.
func (s BuildStatus) IsTerminal() bool {
	switch s {
	case BuildCompleted, BuildFailed, BuildCanceled:
		return true
	}

	return false
}

// Succeeded reports whether the build finished with a usable environment.
func (s BuildStatus) Succeeded() bool {
	return s == BuildCompleted
}

// Build tracks one build of an environment specification.
type Build struct {
	ID              int         `json:"id"`
	EnvironmentID   int         `json:"environment_id"`
	SpecificationID int         `json:"specification_id"`
	Status          BuildStatus `json:"status"`
	SizeBytes       int64       `json:"size"`
	ScheduledOn     *time.Time  `json:"scheduled_on"`
	StartedOn       *time.Time  `json:"started_on"`
	EndedOn         *time.Time  `json:"ended_on"`
}

// Duration returns the wall-clock build time, zero while not started.
func (b Build) Duration() time.Duration {
	if b.StartedOn == nil {
		return 0
	}

	end := time.Now()
	if b.EndedOn != nil {
		end = *b.EndedOn
	}

	return end.Sub(*b.StartedOn)
}
