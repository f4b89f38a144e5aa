package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/story-grid/internal/model"
	"github.com/ytget/story-grid/internal/platform"
)

// Import constants
const (
	TaskIDPrefix = "import-"

	// download share of the progress bar; the cut takes the rest
	downloadShare = 0.9
)

var (
	// ErrNoOutput is returned when yt-dlp reports success without a file
	ErrNoOutput = errors.New("yt-dlp produced no file")

	// ErrTaskNotFound is returned for unknown task IDs
	ErrTaskNotFound = errors.New("import task not found")

	// ErrTaskNotActive is returned when stopping a finished task
	ErrTaskNotActive = errors.New("import task is not active")
)

// Service handles remote clip imports
type Service struct {
	tasks      map[string]*model.ImportTask
	tasksMutex sync.RWMutex
	cancels    map[string]context.CancelFunc
	dir        string
	maxSeconds float64
	downloader Downloader
	trimmer    Trimmer
	onUpdate   func(*model.ImportTask) // callback for UI updates
}

// NewService creates an import service writing into dir
func NewService(dir string) *Service {
	return NewServiceWith(dir, YTDLP{}, FFmpegTrimmer{})
}

// NewServiceWith creates an import service with explicit backends
func NewServiceWith(dir string, downloader Downloader, trimmer Trimmer) *Service {
	return &Service{
		tasks:      make(map[string]*model.ImportTask),
		cancels:    make(map[string]context.CancelFunc),
		dir:        dir,
		maxSeconds: model.VideoMaxSeconds,
		downloader: downloader,
		trimmer:    trimmer,
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.ImportTask)) {
	s.onUpdate = callback
}

// Import downloads url and blocks until the clip is ready
func (s *Service) Import(ctx context.Context, url string) (*model.ImportTask, error) {
	task, err := s.addTask(url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	s.tasksMutex.Lock()
	s.cancels[task.ID] = cancel
	s.tasksMutex.Unlock()

	if err := s.run(ctx, task); err != nil {
		return task, err
	}
	return task, nil
}

// Start downloads url in the background
func (s *Service) Start(url string) (*model.ImportTask, error) {
	task, err := s.addTask(url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.tasksMutex.Lock()
	s.cancels[task.ID] = cancel
	s.tasksMutex.Unlock()

	go func() {
		if err := s.run(ctx, task); err != nil {
			log.Printf("Import %s failed: %v", task.ID, err)
		}
	}()
	return task, nil
}

// StopImport cancels a running import
func (s *Service) StopImport(id string) error {
	s.tasksMutex.Lock()
	task, exists := s.tasks[id]
	if !exists {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if !task.Status.CanStop() {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotActive, task.Status)
	}
	task.Status = model.TaskStatusStopping
	cancel := s.cancels[id]
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
	if cancel != nil {
		cancel()
	}
	return nil
}

// GetTask returns a copy of the task with the given ID
func (s *Service) GetTask(id string) (*model.ImportTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// addTask registers a pending task, rejecting a URL that is already in flight
func (s *Service) addTask(url string) (*model.ImportTask, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	for _, task := range s.tasks {
		if task.URL == url && !task.Status.IsFinished() {
			return nil, fmt.Errorf("import already in progress for URL: %s", url)
		}
	}

	task := &model.ImportTask{
		ID:        generateTaskID(),
		URL:       url,
		Status:    model.TaskStatusPending,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
	s.tasks[task.ID] = task
	return task, nil
}

// run downloads and cuts the clip, recording the outcome on the task
func (s *Service) run(ctx context.Context, task *model.ImportTask) error {
	defer func() {
		s.tasksMutex.Lock()
		if cancel, ok := s.cancels[task.ID]; ok {
			cancel()
			delete(s.cancels, task.ID)
		}
		s.tasksMutex.Unlock()
	}()

	s.setStatus(task, model.TaskStatusStarting)
	if err := platform.CreateDirectoryIfNotExists(s.dir); err != nil {
		s.setTaskError(task, err)
		return err
	}

	s.setStatus(task, model.TaskStatusDownloading)
	path, title, err := s.downloader.Download(ctx, task.URL, s.dir, func(p Progress) {
		s.tasksMutex.Lock()
		task.Progress = float64(p.Percent) / 100 * downloadShare
		task.Percent = int(task.Progress * 100)
		task.ETASec = p.ETASec
		if p.Title != "" && task.Title == "" {
			task.Title = p.Title
		}
		s.tasksMutex.Unlock()
		s.notifyUpdate(task)
	})
	if err != nil {
		return s.finish(ctx, task, err)
	}

	s.tasksMutex.Lock()
	if title != "" {
		task.Title = title
	}
	task.Status = model.TaskStatusFinalizing
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	path, err = s.trimmer.Trim(ctx, path, s.maxSeconds, func(fraction float64) {
		s.tasksMutex.Lock()
		task.Progress = downloadShare + fraction*(1-downloadShare)
		task.Percent = int(task.Progress * 100)
		s.tasksMutex.Unlock()
		s.notifyUpdate(task)
	})
	if err != nil {
		return s.finish(ctx, task, err)
	}

	s.tasksMutex.Lock()
	task.OutputPath = path
	s.tasksMutex.Unlock()
	return s.finish(ctx, task, nil)
}

// finish moves the task to its terminal state
func (s *Service) finish(ctx context.Context, task *model.ImportTask, err error) error {
	s.tasksMutex.Lock()
	switch {
	case err == nil:
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
		task.ETASec = -1
	case ctx.Err() != nil:
		task.Status = model.TaskStatusStopped
		err = ctx.Err()
	default:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
	return err
}

// setStatus updates the task status unless a stop was requested
func (s *Service) setStatus(task *model.ImportTask, status model.TaskStatus) {
	s.tasksMutex.Lock()
	if !task.Status.CanMoveTo(status) {
		s.tasksMutex.Unlock()
		return
	}
	task.Status = status
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}

// setTaskError sets an error state for a task
func (s *Service) setTaskError(task *model.ImportTask, err error) {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusError
	task.LastError = err.Error()
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.ImportTask) {
	if s.onUpdate == nil {
		return
	}
	s.tasksMutex.RLock()
	snapshot := *task
	s.tasksMutex.RUnlock()
	s.onUpdate(&snapshot)
}

// generateTaskID generates a unique task ID using UUID v7
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
