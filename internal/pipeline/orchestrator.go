package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/download"
	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/progress"
	"github.com/ytget/yt-mp3/internal/transcode"
)

// Status messages shown by the progress sink
const (
	MessageResolving   = "Fetching video info..."
	MessageDownloading = "Downloading..."
	MessageConverting  = "Converting..."
	MessageSuccess     = "Conversion successful!"
	MessageFailed      = "Conversion failed"
)

// DefaultDisplayDelay is how long Done or Failed stays visible before Idle
const DefaultDisplayDelay = 2 * time.Second

// Options wires the orchestrator to its stages and collaborators.
// Resolver, Fetcher, Transcoder, Preferences and Chooser are required.
type Options struct {
	Resolver    Resolver
	Fetcher     download.Downloader
	Transcoder  transcode.Transcoder
	Preferences Preferences
	Chooser     FolderChooser

	Sink         progress.Sink
	Recorder     Recorder
	IdleNotifier IdleNotifier
	Logger       *zap.Logger

	// Gate rate-limits progress; nil means a fresh 800ms gate
	Gate *progress.Gate
	// DisplayDelay is the pause in Done/Failed before returning to Idle
	DisplayDelay time.Duration
	// LockPath, when set, adds a cross-process single-run file lock
	LockPath string
}

// Orchestrator runs one conversion at a time
type Orchestrator struct {
	opts    Options
	logger  *zap.Logger
	tracker *progress.Tracker
	lock    *runLock

	mu    sync.Mutex
	state model.State
	run   *model.Run
}

// New creates an orchestrator in the Idle state
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Resolver == nil:
		return nil, errors.New("pipeline: resolver is required")
	case opts.Fetcher == nil:
		return nil, errors.New("pipeline: fetcher is required")
	case opts.Transcoder == nil:
		return nil, errors.New("pipeline: transcoder is required")
	case opts.Preferences == nil:
		return nil, errors.New("pipeline: preferences are required")
	case opts.Chooser == nil:
		return nil, errors.New("pipeline: folder chooser is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gate := opts.Gate
	if gate == nil {
		gate = progress.NewGate(progress.DefaultWindow)
	}
	if opts.DisplayDelay < 0 {
		opts.DisplayDelay = 0
	}

	return &Orchestrator{
		opts:    opts,
		logger:  logger,
		tracker: progress.NewTracker(opts.Sink, gate),
		lock:    newRunLock(opts.LockPath),
		state:   model.StateIdle,
	}, nil
}

// State returns the current pipeline state
func (o *Orchestrator) State() model.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress returns the last published progress state
func (o *Orchestrator) Progress() model.ProgressState {
	return o.tracker.Snapshot()
}

// Current returns a copy of the run in flight, or nil when idle
func (o *Orchestrator) Current() *model.Run {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run == nil {
		return nil
	}
	run := *o.run
	return &run
}

// Submit runs the whole pipeline for rawURL and blocks until the
// orchestrator is back in Idle. Invalid input returns ErrInvalidInput
// without starting a run; a submission while another run is active
// returns ErrBusy. A cancelled folder prompt returns ErrCancelled.
func (o *Orchestrator) Submit(ctx context.Context, rawURL string) (*model.Run, error) {
	if _, err := platform.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	run := model.NewRun(rawURL)
	if err := o.begin(run); err != nil {
		return nil, err
	}

	log := o.logger.With(zap.String("run_id", run.ID), zap.String("url", rawURL))
	log.Info("run started")

	err := o.execute(ctx, run, log)

	switch {
	case errors.Is(err, model.ErrCancelled):
		log.Info("run cancelled at folder prompt")
		o.tracker.Begin("")
		o.finish(run)
		return o.snapshot(run), err
	case err != nil:
		o.fail(ctx, run, err, log)
	default:
		o.succeed(ctx, run, log)
	}

	o.hold(ctx)
	o.finish(run)
	return o.snapshot(run), err
}

// begin moves Idle → Resolving or reports ErrBusy
func (o *Orchestrator) begin(run *model.Run) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != model.StateIdle {
		return fmt.Errorf("%w: pipeline is %s", model.ErrBusy, o.state)
	}
	if err := o.lock.acquire(); err != nil {
		return err
	}

	o.run = run
	o.setStateLocked(model.StateResolving)
	return nil
}

// execute runs the stages in order and returns the first failure
func (o *Orchestrator) execute(ctx context.Context, run *model.Run, log *zap.Logger) error {
	o.tracker.Begin(MessageResolving)
	src, err := o.opts.Resolver.Resolve(ctx, run.URL)
	if err != nil {
		return err
	}
	o.update(func() { run.Title = src.Title })
	log.Debug("source resolved",
		zap.String("source_id", src.ID),
		zap.String("title", src.Title),
		zap.String("protocol", src.Protocol),
	)

	folder, ok, err := o.opts.Chooser.PromptForFolder(ctx, o.opts.Preferences.OutputFolder())
	if err != nil {
		return fmt.Errorf("folder prompt: %w", err)
	}
	if !ok {
		return model.ErrCancelled
	}
	o.opts.Preferences.SetOutputFolder(folder)

	req := model.DownloadRequest{
		SourceURL:    run.URL,
		OutputFolder: folder,
		BitrateKbps:  o.opts.Preferences.Bitrate(),
	}
	baseName := platform.FileBaseName(src.Title, src.ID)
	o.update(func() {
		run.BitrateKbps = req.BitrateKbps
		run.TempPath = filepath.Join(req.OutputFolder, download.TempFileName(src))
	})

	o.setState(model.StateFetching)
	o.tracker.Begin(MessageDownloading)
	temp, err := o.opts.Fetcher.Fetch(ctx, src, req.OutputFolder, o.tracker)
	if err != nil {
		return err
	}
	o.update(func() { run.TempPath = temp.FilePath })

	o.setState(model.StateTranscoding)
	o.tracker.Begin(MessageConverting)
	out, err := o.opts.Transcoder.Transcode(ctx, temp, req.OutputFolder, transcode.OutputFileName(baseName), req.BitrateKbps, src.DurationSec, o.tracker)
	if err != nil {
		return err
	}
	o.update(func() { run.OutputPath = out.Path() })

	o.setState(model.StateCleaning)
	if err := os.Remove(temp.FilePath); err != nil {
		log.Warn("temp file cleanup failed",
			zap.String("temp_path", temp.FilePath),
			zap.Error(fmt.Errorf("%w: %w", model.ErrCleanup, err)),
		)
	}
	return nil
}

func (o *Orchestrator) succeed(ctx context.Context, run *model.Run, log *zap.Logger) {
	o.update(func() {
		run.FinishedAt = time.Now()
		run.State = model.StateDone
	})
	o.setState(model.StateDone)
	o.tracker.Finish(100)
	o.tracker.SetMessage(MessageSuccess)

	log.Info("run finished",
		zap.String("output_path", run.OutputPath),
		zap.Duration("elapsed", run.Elapsed()),
	)
	o.record(ctx, run, log)
}

func (o *Orchestrator) fail(ctx context.Context, run *model.Run, err error, log *zap.Logger) {
	failedIn := o.State()
	o.update(func() {
		run.FinishedAt = time.Now()
		run.LastError = err.Error()
		run.State = model.StateFailed
	})
	o.setState(model.StateFailed)
	o.tracker.SetMessage(MessageFailed)

	log.Error("run failed", zap.Stringer("stage", failedIn), zap.Error(err))
	o.record(ctx, run, log)
}

func (o *Orchestrator) record(ctx context.Context, run *model.Run, log *zap.Logger) {
	if o.opts.Recorder == nil {
		return
	}
	if err := o.opts.Recorder.Record(context.WithoutCancel(ctx), o.snapshot(run)); err != nil {
		log.Warn("record run history", zap.Error(err))
	}
}

// hold keeps Done/Failed on screen for DisplayDelay
func (o *Orchestrator) hold(ctx context.Context) {
	if o.opts.DisplayDelay <= 0 {
		return
	}
	timer := time.NewTimer(o.opts.DisplayDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// finish returns to Idle, releases the lock and notifies the UI
func (o *Orchestrator) finish(run *model.Run) {
	o.mu.Lock()
	if !run.State.IsFinished() {
		run.State = model.StateIdle
	}
	o.run = nil
	o.setStateLocked(model.StateIdle)
	if err := o.lock.release(); err != nil {
		o.logger.Warn("release run lock", zap.Error(err))
	}
	o.mu.Unlock()

	if o.opts.IdleNotifier != nil {
		o.opts.IdleNotifier.OnIdle()
	}
}

func (o *Orchestrator) setState(state model.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setStateLocked(state)
}

func (o *Orchestrator) setStateLocked(state model.State) {
	o.logger.Debug("state change", zap.Stringer("from", o.state), zap.Stringer("to", state))
	o.state = state
	if o.run != nil && !o.run.State.IsFinished() {
		o.run.State = state
	}
}

// update mutates the run under the orchestrator lock
func (o *Orchestrator) update(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn()
}

func (o *Orchestrator) snapshot(run *model.Run) *model.Run {
	o.mu.Lock()
	defer o.mu.Unlock()
	copied := *run
	return &copied
}
