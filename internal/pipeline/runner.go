package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/MikeSquared-Agency/chilly/internal/archive"
	"github.com/MikeSquared-Agency/chilly/internal/dataset"
	"github.com/MikeSquared-Agency/chilly/internal/hermes"
	"github.com/MikeSquared-Agency/chilly/internal/metrics"
)

// Config holds the generate command configuration.
type Config struct {
	InputDir     string
	Archive      string // optional: zip export extracted over InputDir first
	Profile      string
	Seed         uint64
	ManifestPath string
	Options      dataset.Options
}

// RunRecorder persists a finished run and its samples.
type RunRecorder interface {
	WriteRun(ctx context.Context, m *dataset.Manifest, train, val []string) error
}

// EventPublisher announces a finished run.
type EventPublisher interface {
	PublishDatasetGenerated(ctx context.Context, evt hermes.DatasetGenerated) error
}

// Notifier posts a human-readable run summary.
type Notifier interface {
	PostRunSummary(ctx context.Context, m *dataset.Manifest) (string, error)
}

// MetricsPusher ships the run's metrics somewhere they can be scraped.
type MetricsPusher interface {
	Push(ctx context.Context) error
}

// Runner orchestrates a dataset generation run and fans the result out
// to whichever sinks are configured.
type Runner struct {
	cfg      Config
	recorder RunRecorder
	events   EventPublisher
	notifier Notifier
	pusher   MetricsPusher
	logger   *slog.Logger
	out      io.Writer
}

// NewRunner creates a runner. Sinks are attached with the With* methods.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger, out: os.Stdout}
}

func (r *Runner) WithRecorder(rec RunRecorder) *Runner {
	r.recorder = rec
	return r
}

func (r *Runner) WithEvents(pub EventPublisher) *Runner {
	r.events = pub
	return r
}

func (r *Runner) WithNotifier(n Notifier) *Runner {
	r.notifier = n
	return r
}

func (r *Runner) WithMetricsPusher(p MetricsPusher) *Runner {
	r.pusher = p
	return r
}

// WithOutput redirects the end-of-run summary, which defaults to stdout.
func (r *Runner) WithOutput(w io.Writer) *Runner {
	r.out = w
	return r
}

// Run executes the generation run. Only extraction and generation errors
// fail the run; sink failures are logged and kept in the manifest.
func (r *Runner) Run(ctx context.Context) (*dataset.Manifest, error) {
	start := time.Now()

	m := dataset.NewManifest(r.cfg.ManifestPath)
	m.InputDir = r.cfg.InputDir
	m.Archive = r.cfg.Archive
	m.Profile = r.cfg.Profile
	m.Seed = r.cfg.Seed
	m.Options = r.cfg.Options

	if r.cfg.Archive != "" {
		n, err := archive.ExtractZip(r.cfg.Archive, r.cfg.InputDir)
		if err != nil {
			metrics.RunFailed()
			return nil, fmt.Errorf("extract archive: %w", err)
		}
		r.logger.Info("archive extracted", "archive", r.cfg.Archive, "dest", r.cfg.InputDir, "files", n)
	}

	gen := dataset.NewGenerator(r.cfg.Options, dataset.NewSeededRand(r.cfg.Seed), r.logger)
	out, err := gen.Generate(r.cfg.InputDir)
	if err != nil {
		metrics.RunFailed()
		return nil, fmt.Errorf("generate: %w", err)
	}

	m.Finish(out.Result)
	metrics.ObserveRun(out.Result, time.Since(start))

	r.deliver(ctx, m, out)

	if r.pusher != nil {
		if err := r.pusher.Push(ctx); err != nil {
			r.sinkFailed(m, "pushgateway", err)
		}
	}

	if err := m.Save(); err != nil {
		r.logger.Warn("failed to save manifest", "path", m.Path(), "error", err)
	}

	fmt.Fprintf(r.out, "Number of conversations: %d\n", out.Survivors)
	if out.Train < r.cfg.Options.TrainLen {
		fmt.Fprintf(r.out, "Warning: only %d of %d requested training examples available\n", out.Train, r.cfg.Options.TrainLen)
	}
	if out.Val < r.cfg.Options.ValLen {
		fmt.Fprintf(r.out, "Warning: only %d of %d requested validation examples available\n", out.Val, r.cfg.Options.ValLen)
	}

	r.logger.Info("run complete",
		"run_id", m.RunID,
		"survivors", out.Survivors,
		"train", out.Train,
		"val", out.Val,
		"sink_errors", len(m.Errors),
	)
	return m, nil
}

func (r *Runner) deliver(ctx context.Context, m *dataset.Manifest, out *dataset.Output) {
	if r.recorder != nil {
		if err := r.recorder.WriteRun(ctx, m, out.TrainTexts, out.ValTexts); err != nil {
			r.sinkFailed(m, "store", err)
		}
	}

	if r.events != nil {
		if err := r.events.PublishDatasetGenerated(ctx, generatedEvent(m)); err != nil {
			r.sinkFailed(m, "nats", err)
		}
	}

	if r.notifier != nil {
		if _, err := r.notifier.PostRunSummary(ctx, m); err != nil {
			r.sinkFailed(m, "slack", err)
		}
	}
}

func (r *Runner) sinkFailed(m *dataset.Manifest, sink string, err error) {
	r.logger.Warn("sink failed", "sink", sink, "run_id", m.RunID, "error", err)
	metrics.SinkFailed(sink)
	m.AddError(fmt.Sprintf("%s: %v", sink, err))
}

func generatedEvent(m *dataset.Manifest) hermes.DatasetGenerated {
	return hermes.DatasetGenerated{
		RunID:      m.RunID.String(),
		InputDir:   m.InputDir,
		Profile:    m.Profile,
		TrainFile:  m.Options.TrainFile,
		ValFile:    m.Options.ValFile,
		Survivors:  m.Result.Survivors,
		Train:      m.Result.Train,
		Val:        m.Result.Val,
		FinishedAt: m.FinishedAt,
	}
}
