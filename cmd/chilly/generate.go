package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/MikeSquared-Agency/chilly/internal/config"
	"github.com/MikeSquared-Agency/chilly/internal/dataset"
	"github.com/MikeSquared-Agency/chilly/internal/hermes"
	"github.com/MikeSquared-Agency/chilly/internal/metrics"
	"github.com/MikeSquared-Agency/chilly/internal/pipeline"
	"github.com/MikeSquared-Agency/chilly/internal/slack"
	"github.com/MikeSquared-Agency/chilly/internal/store"
)

type generateFlags struct {
	input       string
	archive     string
	profile     string
	profileFile string
	manifest    string
	trainLen    int
	valLen      int
	gap         time.Duration
	messages    int
	textMaxLen  int
	render      string
	trainFile   string
	valFile     string
	seed        uint64
}

func parseGenerateFlags(cfg config.Config, args []string) (generateFlags, map[string]bool, error) {
	var f generateFlags
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.StringVar(&f.input, "input", cfg.InputDir, "Directory of per-channel Slack export folders (or set CHILLY_INPUT_DIR)")
	fs.StringVar(&f.archive, "archive", cfg.Archive, "Slack export zip to extract into --input first (optional)")
	fs.StringVar(&f.profile, "profile", cfg.Profile, "Built-in profile: plain|chat")
	fs.StringVar(&f.profileFile, "profile-file", cfg.ProfileFile, "YAML profile file (overrides --profile)")
	fs.StringVar(&f.manifest, "manifest", cfg.ManifestPath, "Where to write the run manifest")
	fs.IntVar(&f.trainLen, "train-len", 0, "Number of training examples (default: from profile)")
	fs.IntVar(&f.valLen, "val-len", 0, "Number of validation examples (default: from profile)")
	fs.DurationVar(&f.gap, "gap", 0, "Silence that ends a main-channel conversation")
	fs.IntVar(&f.messages, "messages", 0, "Speaker turns per conversation")
	fs.IntVar(&f.textMaxLen, "text-max-len", 0, "Rendered texts must be shorter than this many characters")
	fs.StringVar(&f.render, "render", "", "Rendering: plain|roles")
	fs.StringVar(&f.trainFile, "train-file", "", "Training output path")
	fs.StringVar(&f.valFile, "val-file", "", "Validation output path")
	fs.Uint64Var(&f.seed, "seed", 0, "Shuffle seed (default: random, recorded in the manifest)")

	if err := fs.Parse(args); err != nil {
		return f, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// resolveOptions builds run options from the profile, then applies any
// explicitly set flags on top.
func resolveOptions(f generateFlags, set map[string]bool) (dataset.Options, string, error) {
	var (
		opts dataset.Options
		name = f.profile
		err  error
	)
	if f.profileFile != "" {
		opts, err = config.LoadProfileFile(f.profileFile)
		name = f.profileFile
	} else {
		opts, err = config.BuiltinOptions(f.profile)
	}
	if err != nil {
		return opts, "", err
	}

	if set["train-len"] {
		opts.TrainLen = f.trainLen
	}
	if set["val-len"] {
		opts.ValLen = f.valLen
	}
	if set["gap"] {
		opts.ConversationGap = f.gap
	}
	if set["messages"] {
		opts.MaxMessages = f.messages
	}
	if set["text-max-len"] {
		opts.TextMaxLen = f.textMaxLen
	}
	if set["render"] {
		opts.Render = dataset.RenderMode(f.render)
	}
	if set["train-file"] {
		opts.TrainFile = f.trainFile
	}
	if set["val-file"] {
		opts.ValFile = f.valFile
	}

	if opts.TrainLen == 0 && opts.ValLen == 0 && !set["train-len"] && !set["val-len"] {
		return opts, "", fmt.Errorf("%w: profile %q sets no split sizes, pass --train-len and --val-len", dataset.ErrInvalidOptions, name)
	}

	if err := opts.Validate(); err != nil {
		return opts, "", err
	}
	return opts, name, nil
}

func runGenerate(ctx context.Context, cfg config.Config, args []string) error {
	f, set, err := parseGenerateFlags(cfg, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	opts, profile, err := resolveOptions(f, set)
	if err != nil {
		return fmt.Errorf("resolve options: %w", err)
	}

	seed := f.seed
	if !set["seed"] {
		seed = rand.Uint64()
	}

	logger := slog.Default()
	runner := pipeline.NewRunner(pipeline.Config{
		InputDir:     f.input,
		Archive:      f.archive,
		Profile:      profile,
		Seed:         seed,
		ManifestPath: f.manifest,
		Options:      opts,
	}, logger)

	// Sinks are optional; generation works with none of them configured.
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("database unavailable, run will not be recorded", "error", err)
		} else {
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				logger.Warn("ensure schema failed, run will not be recorded", "error", err)
			} else {
				runner.WithRecorder(db)
				logger.Info("database connected")
			}
		}
	}

	if cfg.NatsURL != "" {
		hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			logger.Warn("NATS unavailable, skipping run event", "url", cfg.NatsURL, "error", err)
		} else {
			defer hc.Close()
			runner.WithEvents(hc)
			logger.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		runner.WithNotifier(slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger))
		logger.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	if cfg.PushgatewayURL != "" {
		runner.WithMetricsPusher(metrics.NewPusher(cfg.PushgatewayURL, metrics.DefaultJob))
		logger.Info("metrics pushgateway ready", "url", cfg.PushgatewayURL)
	}

	logger.Info("generating dataset",
		"input", f.input,
		"profile", profile,
		"seed", seed,
		"train_len", opts.TrainLen,
		"val_len", opts.ValLen,
	)

	_, err = runner.Run(ctx)
	return err
}
