package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
)

// Export constants
const (
	TaskIDPrefix   = "export-"
	FilenamePrefix = "story-grid-"
	MimePNG        = "image/png"
	MimeGIF        = "image/gif"
	deliverTimeout = 2 * time.Minute
)

// Errors returned by the export service
var (
	// ErrExportBusy is returned when an animated export is already recording
	ErrExportBusy = errors.New("an export is already in progress")
	// ErrExportUnavailable means no usable video encoder exists here
	ErrExportUnavailable = errors.New("export unavailable here")
	// ErrNoSurface means there is no canvas to snapshot
	ErrNoSurface = errors.New("no surface to export")
	// ErrTaskNotFound is returned for unknown task IDs
	ErrTaskNotFound = errors.New("export task not found")
	// ErrTaskNotActive is returned when stopping a finished task
	ErrTaskNotActive = errors.New("export task is not active")
)

// Service runs exports. PNG snapshots run inline; GIF and video exports run
// in the background and at most one of them records at a time.
type Service struct {
	tasks      map[string]*model.ExportTask
	tasksMutex sync.RWMutex
	onUpdate   func(*model.ExportTask)
	cancels    map[string]context.CancelFunc
	activeID   string

	sink     Sink
	encoders EncoderFactory
	video    videoRecorder
	now      func() time.Time
}

// NewService creates an export service delivering through sink.
func NewService(sink Sink, encoders EncoderFactory) *Service {
	return &Service{
		tasks:    make(map[string]*model.ExportTask),
		cancels:  make(map[string]context.CancelFunc),
		sink:     sink,
		encoders: encoders,
		video:    videoRecorder{refresh: RefreshInterval, fps: VideoFrameRate, now: time.Now},
		now:      time.Now,
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.ExportTask)) {
	s.onUpdate = callback
}

// Busy reports whether an animated export is recording.
func (s *Service) Busy() bool {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return s.activeID != ""
}

// Filename returns story-grid-<unix-ms>.<ext>.
func Filename(ext string, at time.Time) string {
	return fmt.Sprintf("%s%d.%s", FilenamePrefix, at.UnixMilli(), ext)
}

// Start begins an export of the given format. PNG completes before Start
// returns and returns a nil task if there is nothing to snapshot. GIF and
// video return immediately with a pending task, or ErrExportBusy while
// another animated export records.
func (s *Service) Start(format model.ExportFormat, job Job) (*model.ExportTask, error) {
	switch format {
	case model.FormatPNG:
		return s.exportPNG(job)
	case model.FormatGIF, model.FormatVideo:
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}

	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if s.activeID != "" {
		return nil, ErrExportBusy
	}

	task := &model.ExportTask{
		ID:        generateTaskID(),
		Format:    format,
		Status:    model.TaskStatusPending,
		StartedAt: s.now(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.tasks[task.ID] = task
	s.cancels[task.ID] = cancel
	s.activeID = task.ID

	go s.run(ctx, task, job)

	return task, nil
}

// StopExport cancels a recording export. Nothing is delivered.
func (s *Service) StopExport(taskID string) error {
	s.tasksMutex.Lock()
	task, exists := s.tasks[taskID]
	if !exists {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if !task.Status.CanStop() {
		s.tasksMutex.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotActive, task.Status)
	}
	task.Status = model.TaskStatusStopping
	cancel := s.cancels[taskID]
	s.tasksMutex.Unlock()

	if cancel != nil {
		cancel()
	}
	s.notifyUpdate(task)
	return nil
}

// GetTask returns a copy of an export task by ID
func (s *Service) GetTask(taskID string) (*model.ExportTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[taskID]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

func (s *Service) exportPNG(job Job) (*model.ExportTask, error) {
	task := &model.ExportTask{
		ID:        generateTaskID(),
		Format:    model.FormatPNG,
		Status:    model.TaskStatusStarting,
		Extension: "png",
		MimeType:  MimePNG,
		StartedAt: s.now(),
	}
	players := openPlayers(job, 1, media.Exact)
	defer closePlayers(players)

	data, err := RenderPNG(job, players)
	if errors.Is(err, ErrNoSurface) {
		log.Printf("png export skipped: %v", err)
		return nil, nil
	}
	s.tasksMutex.Lock()
	s.tasks[task.ID] = task
	s.tasksMutex.Unlock()
	if err != nil {
		s.setTaskError(task, err)
		return task, err
	}
	if err := s.deliver(context.Background(), task, data); err != nil {
		return task, err
	}
	return task, nil
}

// run performs an animated export and releases the busy flag when done
func (s *Service) run(ctx context.Context, task *model.ExportTask, job Job) {
	defer func() {
		s.tasksMutex.Lock()
		if s.activeID == task.ID {
			s.activeID = ""
		}
		if cancel := s.cancels[task.ID]; cancel != nil {
			cancel()
			delete(s.cancels, task.ID)
		}
		s.tasksMutex.Unlock()
	}()

	if !s.setStatus(task, model.TaskStatusStarting) {
		s.finish(ctx, task, context.Canceled)
		return
	}

	// GIF frames sample a virtual clock; video follows the wall clock
	fps, pacing := float64(GIFFrameRate), media.Exact
	maxSeconds := model.GIFMaxSeconds
	var (
		codec Codec
		enc   Encoder
	)
	if task.Format == model.FormatVideo {
		fps, pacing, maxSeconds = VideoFrameRate, media.Realtime, model.VideoMaxSeconds
		var err error
		codec, err = s.encoders.Negotiate(ctx)
		if err != nil {
			s.finish(ctx, task, err)
			return
		}
		w, h := surfaceSize(job.Width, job.Height)
		enc, err = s.encoders.NewEncoder(ctx, codec, w, h, VideoFrameRate)
		if err != nil {
			s.finish(ctx, task, err)
			return
		}
	}

	players := openPlayers(job, fps, pacing)
	defer closePlayers(players)

	s.tasksMutex.Lock()
	stopping := !task.Status.CanMoveTo(model.TaskStatusRecording)
	if !stopping {
		task.Extension, task.MimeType = "gif", MimeGIF
		if task.Format == model.FormatVideo {
			task.Extension, task.MimeType = codec.Extension, codec.MimeType
		}
		task.DurationSeconds = model.AggregateDuration(job.Board.Cells, maxSeconds)
		task.Status = model.TaskStatusRecording
	}
	s.tasksMutex.Unlock()
	if stopping {
		if enc != nil {
			enc.Abort()
		}
		s.finish(ctx, task, context.Canceled)
		return
	}
	s.notifyUpdate(task)

	progress := func(done, total int) {
		s.tasksMutex.Lock()
		task.Progress = float64(done) / float64(total)
		task.Percent = done * 100 / total
		if task.Format == model.FormatGIF {
			task.Frames = done
		}
		s.tasksMutex.Unlock()
		s.notifyUpdate(task)
	}

	var (
		data []byte
		err  error
	)
	switch task.Format {
	case model.FormatGIF:
		data, err = recordGIF(ctx, job, players, progress)
	case model.FormatVideo:
		var frames int
		data, frames, err = s.video.record(ctx, job, players, enc, progress)
		s.tasksMutex.Lock()
		task.Frames = frames
		s.tasksMutex.Unlock()
	}
	if err != nil {
		s.finish(ctx, task, err)
		return
	}

	if !s.setStatus(task, model.TaskStatusFinalizing) {
		s.finish(ctx, task, context.Canceled)
		return
	}
	if err := s.deliver(ctx, task, data); err != nil {
		return
	}
	log.Printf("export %s: %s, %d frames in %s", task.ID, task.OutputPath, task.Frames, task.Elapsed().Round(time.Millisecond))
}

// deliver hands data to the sink and completes the task
func (s *Service) deliver(ctx context.Context, task *model.ExportTask, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	name := Filename(task.Extension, s.now())
	path, err := s.sink.Deliver(ctx, name, task.MimeType, data)
	if err != nil {
		s.setTaskError(task, err)
		return err
	}
	s.tasksMutex.Lock()
	task.OutputPath = path
	task.Status = model.TaskStatusCompleted
	task.Progress = 1.0
	task.Percent = 100
	task.FinishedAt = s.now()
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
	return nil
}

// finish records a failed or cancelled export
func (s *Service) finish(ctx context.Context, task *model.ExportTask, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		s.tasksMutex.Lock()
		task.Status = model.TaskStatusStopped
		task.FinishedAt = s.now()
		s.tasksMutex.Unlock()
		s.notifyUpdate(task)
		return
	}
	log.Printf("export %s failed: %v", task.ID, err)
	s.setTaskError(task, err)
}

// setStatus moves the task on unless a stop was requested, and reports
// whether it did
func (s *Service) setStatus(task *model.ExportTask, status model.TaskStatus) bool {
	s.tasksMutex.Lock()
	if !task.Status.CanMoveTo(status) {
		s.tasksMutex.Unlock()
		return false
	}
	task.Status = status
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
	return true
}

// setTaskError sets an error state for a task
func (s *Service) setTaskError(task *model.ExportTask, err error) {
	s.tasksMutex.Lock()
	task.Status = model.TaskStatusError
	task.LastError = err.Error()
	task.FinishedAt = s.now()
	s.tasksMutex.Unlock()

	s.notifyUpdate(task)
}

// notifyUpdate hands the callback a snapshot so it can read fields
// without holding the task lock
func (s *Service) notifyUpdate(task *model.ExportTask) {
	if s.onUpdate == nil {
		return
	}
	s.tasksMutex.RLock()
	snapshot := *task
	s.tasksMutex.RUnlock()
	s.onUpdate(&snapshot)
}

// openPlayers opens a fresh, rewound player for every populated cell. A
// cell whose media cannot be opened is left empty for this export.
func openPlayers(job Job, fps float64, pacing media.Pacing) []media.Player {
	players := make([]media.Player, len(job.Board.Cells))
	if job.Open == nil {
		return players
	}
	for i, c := range job.Board.Cells {
		if !c.HasMedia() {
			continue
		}
		p, err := job.Open(c, fps, pacing)
		if err != nil {
			log.Printf("export: cell %d skipped: %v", i, err)
			continue
		}
		p.Rewind()
		players[i] = p
	}
	return players
}

func closePlayers(players []media.Player) {
	for _, p := range players {
		if p != nil {
			p.Close()
		}
	}
}

// generateTaskID generates a unique task ID using UUID v7 for better uniqueness and time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
