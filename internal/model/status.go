package model

// TaskStatus represents the status of an export or import task
type TaskStatus string

const (
	// TaskStatusPending means the task is created but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusStarting means the task is opening players or the encoder
	TaskStatusStarting TaskStatus = "Starting"

	// TaskStatusDownloading means a remote clip is being fetched
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusRecording means frames are being captured
	TaskStatusRecording TaskStatus = "Recording"

	// TaskStatusFinalizing means capture ended and the output is being flushed
	TaskStatusFinalizing TaskStatus = "Finalizing"

	// TaskStatusStopping means the task is being cancelled by the user
	TaskStatusStopping TaskStatus = "Stopping"

	// TaskStatusStopped means the task was cancelled and produced nothing
	TaskStatusStopped TaskStatus = "Stopped"

	// TaskStatusCompleted means the output was produced
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true while the task holds its worker
func (ts TaskStatus) IsActive() bool {
	switch ts {
	case TaskStatusStarting, TaskStatusDownloading, TaskStatusRecording, TaskStatusFinalizing, TaskStatusStopping:
		return true
	}
	return false
}

// IsFinished returns true if the task is in a finished state (completed, stopped, or error)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusStopped || ts == TaskStatusError
}

// CanStop reports whether a stop request applies: the task has not
// finished and no stop is already under way
func (ts TaskStatus) CanStop() bool {
	return ts == TaskStatusPending || (ts.IsActive() && ts != TaskStatusStopping)
}

// CanMoveTo reports whether a worker may move the task to next. Finished
// tasks never move and a stopping task may only finish.
func (ts TaskStatus) CanMoveTo(next TaskStatus) bool {
	switch {
	case ts.IsFinished():
		return false
	case ts == TaskStatusStopping:
		return next.IsFinished()
	}
	return true
}
