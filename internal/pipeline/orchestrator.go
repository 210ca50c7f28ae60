package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sponsorcut/internal/config"
	"sponsorcut/internal/encoding"
	"sponsorcut/internal/filtergraph"
	"sponsorcut/internal/library"
	"sponsorcut/internal/logging"
	"sponsorcut/internal/media/ffprobe"
	"sponsorcut/internal/progress"
	"sponsorcut/internal/segments"
	"sponsorcut/internal/services"
	"sponsorcut/internal/source"
	"sponsorcut/internal/sponsorblock"
	"sponsorcut/internal/staging"
)

// Transcoder runs an encode command while feeding the monitor.
type Transcoder interface {
	Run(ctx context.Context, cmd encoding.Command, monitor *progress.Monitor) error
}

// ProbeFunc returns the duration of a media file in seconds.
type ProbeFunc func(ctx context.Context, binary, path string) (float64, error)

// ValidateFunc checks an encoded file.
type ValidateFunc func(ctx context.Context, binary string, job encoding.Job, expected float64) (encoding.OutputReport, error)

// SegmentFetcherFunc builds a fetcher for a request's categories. Returning
// nil disables the lookup.
type SegmentFetcherFunc func(categories []string) (sponsorblock.Fetcher, error)

// Dependencies are the collaborators of an Orchestrator. Source is required;
// the rest default to the real implementations.
type Dependencies struct {
	Source     source.Client
	Segments   SegmentFetcherFunc
	Transcoder Transcoder
	Probe      ProbeFunc
	Validate   ValidateFunc
	Placer     *library.Placer
	Downloader *source.Downloader
	Observer   Observer
	Logger     *slog.Logger
}

// Orchestrator runs items through the pipeline. A single Orchestrator runs
// one item at a time.
type Orchestrator struct {
	cfg        *config.Config
	source     source.Client
	segments   SegmentFetcherFunc
	builder    *encoding.Builder
	transcoder Transcoder
	probe      ProbeFunc
	validate   ValidateFunc
	placer     *library.Placer
	downloader *source.Downloader
	observer   Observer
	logger     *slog.Logger
}

// New constructs an orchestrator.
func New(cfg *config.Config, deps Dependencies) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if deps.Source == nil {
		return nil, errors.New("pipeline: source client is required")
	}
	logger := logging.NewComponentLogger(deps.Logger, "pipeline")

	o := &Orchestrator{
		cfg:        cfg,
		source:     deps.Source,
		segments:   deps.Segments,
		builder:    encoding.NewBuilder(cfg.FFmpegBinary(), cfg.Encoding.VAAPIDevice),
		transcoder: deps.Transcoder,
		probe:      deps.Probe,
		validate:   deps.Validate,
		placer:     deps.Placer,
		downloader: deps.Downloader,
		observer:   deps.Observer,
		logger:     logger,
	}
	if o.segments == nil {
		o.segments = defaultSegmentFetcher(cfg, deps.Logger)
	}
	if o.transcoder == nil {
		o.transcoder = encoding.NewRunner(deps.Logger)
	}
	if o.probe == nil {
		o.probe = ffprobe.Duration
	}
	if o.validate == nil {
		o.validate = encoding.ValidateOutput
	}
	if o.placer == nil {
		o.placer = library.NewPlacer(cfg.Library.OverwriteExisting)
	}
	if o.downloader == nil {
		o.downloader = &source.Downloader{Client: deps.Source, Retries: cfg.Download.Retries, Logger: deps.Logger}
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	return o, nil
}

func defaultSegmentFetcher(cfg *config.Config, logger *slog.Logger) SegmentFetcherFunc {
	return func(categories []string) (sponsorblock.Fetcher, error) {
		if !cfg.SponsorBlock.Enabled {
			return nil, nil
		}
		if len(categories) == 0 {
			categories = cfg.SponsorBlock.Categories
		}
		return sponsorblock.New(sponsorblock.Config{
			BaseURL:    cfg.SponsorBlock.BaseURL,
			Categories: categories,
			Timeout:    time.Duration(cfg.SponsorBlock.RequestTimeout) * time.Second,
			Logger:     logger,
		})
	}
}

// Run processes one request. The returned error is the fatal failure, if
// any; it is also recorded on the Outcome.
func (o *Orchestrator) Run(ctx context.Context, req Request) (outcome Outcome, err error) {
	started := time.Now()
	job := &Job{
		Locator:     strings.TrimSpace(req.Locator),
		Profile:     req.Profile,
		AudioFormat: req.AudioFormat,
	}
	ctx = services.WithItemID(ctx, job.Locator)

	var workspace *staging.Workspace
	defer func() {
		reached := job.Stage
		if workspace != nil {
			o.enter(ctx, job, StageCleaningUp)
			o.cleanup(ctx, workspace)
		}
		outcome = o.finish(ctx, job, reached, outcome, err, started)
	}()

	if job.Locator == "" {
		return outcome, o.fail(ctx, services.Wrap(services.ErrValidation, string(StageResolving), "", "locator is empty", nil))
	}
	if err := validateRequest(req); err != nil {
		return outcome, o.fail(ctx, err)
	}

	// Resolving.
	stageCtx := o.enter(ctx, job, StageResolving)
	meta, err := o.source.Resolve(stageCtx, job.Locator)
	if err != nil {
		return outcome, o.fail(stageCtx, err)
	}
	job.VideoID, job.Title = meta.ID, meta.Title
	job.Video, job.Audio = meta.Video, meta.Audio
	if req.AudioOnly() {
		job.Video = nil
		meta.Video = nil
	} else if job.Video == nil {
		return outcome, o.fail(stageCtx, services.Wrap(services.ErrExtraction, string(StageResolving), "select streams", "no video stream for "+meta.ID, nil))
	}
	if job.Audio == nil {
		return outcome, o.fail(stageCtx, services.Wrap(services.ErrExtraction, string(StageResolving), "select streams", "no audio stream for "+meta.ID, nil))
	}
	ctx = services.WithItemID(ctx, job.VideoID)
	logging.WithContext(ctx, o.logger).Info("item resolved",
		logging.String(logging.FieldEventType, "item_resolved"),
		logging.String("title", job.Title),
		logging.Duration("reported_duration", meta.Duration),
		logging.String("profile", string(job.Profile)),
	)

	// FetchingSegments.
	stageCtx = o.enter(ctx, job, StageFetchingSegments)
	if segErr := o.fetchSegments(stageCtx, job, req); segErr != nil {
		outcome.SegmentsErr = segErr
	}

	// Downloading.
	stageCtx = o.enter(ctx, job, StageDownloading)
	encJob := encoding.Job{Profile: job.Profile, AudioFormat: job.AudioFormat}
	ext := staging.Extensions{Audio: job.Audio.Extension(), Encoded: encJob.Extension()}
	if job.Video != nil {
		ext.Video = job.Video.Extension()
	}
	workspace, err = staging.Acquire(o.cfg.Paths.TempDir, job.VideoID, ext)
	if err != nil {
		return outcome, o.fail(stageCtx, services.Wrap(services.ErrDownload, string(StageDownloading), "prepare workspace", "", err))
	}
	job.VideoPath, job.AudioPath, job.EncodedPath = workspace.VideoPath, workspace.AudioPath, workspace.EncodedPath
	if job.Video != nil {
		if _, err := o.downloader.Download(stageCtx, meta, source.StreamVideo, job.VideoPath, o.downloadProgress(job, source.StreamVideo)); err != nil {
			return outcome, o.fail(stageCtx, err)
		}
	}
	if _, err := o.downloader.Download(stageCtx, meta, source.StreamAudio, job.AudioPath, o.downloadProgress(job, source.StreamAudio)); err != nil {
		return outcome, o.fail(stageCtx, err)
	}

	// Probing.
	stageCtx = o.enter(ctx, job, StageProbing)
	primary := job.AudioPath
	if job.VideoPath != "" {
		primary = job.VideoPath
	}
	duration, err := o.probe(stageCtx, o.cfg.FFprobeBinary(), primary)
	if err != nil {
		return outcome, o.fail(stageCtx, services.Wrap(services.ErrProbe, string(StageProbing), "ffprobe", primary, err))
	}
	job.Duration = duration
	job.Expected = duration - job.Segments.ClampTo(duration).TotalDuration()
	if job.Expected <= 0 {
		return outcome, o.fail(stageCtx, services.Wrap(services.ErrValidation, string(StageProbing), "expected duration",
			"every second of the media is excluded", nil))
	}

	// Encoding.
	stageCtx = o.enter(ctx, job, StageEncoding)
	encJob.VideoPath = job.VideoPath
	encJob.AudioPath = job.AudioPath
	encJob.OutputPath = job.EncodedPath
	if filter, ok := filtergraph.Build(job.Segments); ok {
		encJob.Filter = &filter
	}
	cmd, err := o.builder.Build(encJob)
	if err != nil {
		return outcome, o.fail(stageCtx, err)
	}
	monitor, err := progress.New(progress.Options{
		Total:       job.Expected,
		FrameMarker: encJob.FrameMarker(),
		Sink:        func(u progress.Update) { o.observer.EncodeProgress(job, u) },
		Logger:      logging.WithContext(stageCtx, o.logger),
		Stage:       string(StageEncoding),
	})
	if err != nil {
		return outcome, o.fail(stageCtx, services.Wrap(services.ErrProbe, string(StageEncoding), "progress monitor", "", err))
	}
	if err := o.transcoder.Run(stageCtx, cmd, monitor); err != nil {
		return outcome, o.fail(stageCtx, err)
	}
	report, err := o.validate(stageCtx, o.cfg.FFprobeBinary(), encJob, job.Expected)
	if err != nil {
		return outcome, o.fail(stageCtx, err)
	}
	outcome.Report = report
	if report.DriftExceeded(job.Expected) {
		logging.WarnWithContext(logging.WithContext(stageCtx, o.logger), "output duration differs from expectation", "output_duration_drift",
			logging.Float64("expected_seconds", job.Expected),
			logging.Float64("actual_seconds", report.Duration),
			logging.Alert("duration_drift"),
			logging.String(logging.FieldErrorHint, "source timestamps may be irregular"),
			logging.String(logging.FieldImpact, "cuts may be slightly offset"),
		)
	}

	libraryDir := strings.TrimSpace(req.LibraryDir)
	if libraryDir == "" {
		libraryDir = o.cfg.Paths.LibraryDir
	}
	target := encoding.OutputPath(libraryDir, job.Title, job.VideoID, encJob.Extension())
	placed, err := o.placer.Place(job.EncodedPath, target)
	if err != nil {
		return outcome, o.fail(stageCtx, services.Wrap(services.ErrEncode, string(StageEncoding), "place output", target, err))
	}
	job.OutputPath = placed
	return outcome, nil
}

func validateRequest(req Request) error {
	if req.AudioOnly() {
		if req.AudioFormat.Extension() == "" {
			return services.Wrap(services.ErrValidation, string(StageResolving), "", fmt.Sprintf("unknown audio format %q", req.AudioFormat), nil)
		}
		return nil
	}
	if req.Profile.Extension() == "" {
		return services.Wrap(services.ErrValidation, string(StageResolving), "", fmt.Sprintf("unknown profile %q", req.Profile), nil)
	}
	return nil
}

func (o *Orchestrator) fetchSegments(ctx context.Context, job *Job, req Request) error {
	logger := logging.WithContext(ctx, o.logger)
	job.Segments = segments.Merge(nil)
	if req.SkipSegments {
		logger.Info("sponsor lookup skipped", logging.String(logging.FieldEventType, "segments_skipped"))
		return nil
	}
	fetcher, err := o.segments(req.Categories)
	if err != nil {
		err = services.Wrap(services.ErrSponsorFetch, string(StageFetchingSegments), "configure provider", "", err)
		o.warnSegments(logger, err)
		return err
	}
	if fetcher == nil {
		logger.Info("sponsor lookup disabled", logging.String(logging.FieldEventType, "segments_disabled"))
		return nil
	}
	raw, err := fetcher.Fetch(ctx, job.VideoID)
	if err != nil {
		o.warnSegments(logger, err)
		return err
	}
	job.Raw = raw
	job.Segments = segments.Merge(raw)
	logger.Info("sponsor segments merged",
		logging.String(logging.FieldEventType, "segments_merged"),
		logging.Int("raw_segments", len(raw)),
		logging.Int("merged_intervals", job.Segments.Len()),
		logging.Float64("excluded_seconds", job.Segments.TotalDuration()),
	)
	return nil
}

func (o *Orchestrator) warnSegments(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "sponsor lookup failed; keeping the whole video", "segments_fetch_failed",
		logging.Error(err),
		logging.ErrorKind(err),
		logging.String(logging.FieldErrorHint, "check network access and sponsorblock.base_url"),
		logging.String(logging.FieldImpact, "nothing will be removed from this item"),
	)
}

func (o *Orchestrator) downloadProgress(job *Job, kind source.StreamKind) source.ProgressFunc {
	return func(written, total int64) {
		o.observer.DownloadProgress(job, kind, written, total)
	}
}

func (o *Orchestrator) enter(ctx context.Context, job *Job, stage Stage) context.Context {
	job.Stage = stage
	stageCtx := services.WithStage(ctx, string(stage))
	logging.WithContext(stageCtx, o.logger).Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
	)
	o.observer.StageChanged(job, stage)
	return stageCtx
}

func (o *Orchestrator) fail(ctx context.Context, err error) error {
	logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "stage failed", "stage_failure",
		logging.Error(err),
		logging.ErrorKind(err),
	)
	return err
}

func (o *Orchestrator) cleanup(ctx context.Context, workspace *staging.Workspace) {
	logger := logging.WithContext(services.WithStage(ctx, string(StageCleaningUp)), o.logger)
	result := workspace.Cleanup()
	for _, failure := range result.Errors {
		logging.WarnWithContext(logger, "failed to remove temp file", "cleanup_failed",
			logging.String("path", failure.Path),
			logging.Error(failure.Error),
			logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed until the next stale sweep"),
		)
	}
	logger.Info("temp files removed",
		logging.String(logging.FieldEventType, "cleanup_complete"),
		logging.Int("removed", len(result.Removed)),
	)
}

func (o *Orchestrator) finish(ctx context.Context, job *Job, reached Stage, outcome Outcome, err error, started time.Time) Outcome {
	outcome.Locator = job.Locator
	outcome.VideoID = job.VideoID
	outcome.Title = job.Title
	outcome.OutputPath = job.OutputPath
	outcome.Segments = job.Segments
	outcome.Duration = job.Duration
	outcome.Expected = job.Expected
	outcome.Elapsed = time.Since(started)
	outcome.Err = err

	final := StageSucceeded
	if err != nil {
		final = StageFailed
		if reached == "" {
			reached = StageResolving
		}
		outcome.FailedStage = reached
		outcome.OutputPath = ""
	}
	job.Stage = final
	outcome.Stage = final
	o.observer.StageChanged(job, final)

	logger := logging.WithContext(ctx, o.logger)
	if err != nil {
		logger.Info("item failed",
			logging.String(logging.FieldEventType, "item_failed"),
			logging.String("failed_stage", string(outcome.FailedStage)),
			logging.ErrorKind(err),
			logging.Duration("elapsed", outcome.Elapsed),
		)
		return outcome
	}
	logger.Info("item complete",
		logging.String(logging.FieldEventType, "item_complete"),
		logging.String("output", outcome.OutputPath),
		logging.Float64("removed_seconds", outcome.Removed()),
		logging.Duration("elapsed", outcome.Elapsed),
	)
	return outcome
}
