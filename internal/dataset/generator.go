package dataset

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/MikeSquared-Agency/chilly/internal/slackexport"
)

// Output is the result of a run plus the texts written to each split.
type Output struct {
	Result
	TrainTexts []string
	ValTexts   []string
}

// Generator turns a directory of channel exports into train/val files.
type Generator struct {
	opts   Options
	rng    *rand.Rand
	logger *slog.Logger
}

// NewGenerator creates a generator. rng drives the shuffle; pass a seeded
// source for reproducible splits.
func NewGenerator(opts Options, rng *rand.Rand, logger *slog.Logger) *Generator {
	return &Generator{opts: opts, rng: rng, logger: logger}
}

// NewSeededRand returns a PCG-backed source for the given seed.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate runs ingestion, segmentation, filtering and the split, writes
// both files and returns the counts. Survivors is the number of rendered
// texts that passed the length filter, before the split.
func (g *Generator) Generate(inputDir string) (*Output, error) {
	if err := g.opts.Validate(); err != nil {
		return nil, err
	}

	channels, err := slackexport.LoadChannels(inputDir)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}

	out := &Output{}
	out.Channels = len(channels)

	var convs []Conversation
	for _, ch := range channels {
		chConvs, err := SegmentChannel(ch, g.opts.MaxMessages, g.opts.ConversationGap)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("channel segmented",
			"channel", ch.Name,
			"files", ch.Files,
			"buckets", len(ch.Buckets),
			"records", ch.Records(),
			"conversations", len(chConvs),
		)
		out.Files += ch.Files
		convs = append(convs, chConvs...)
	}
	out.Conversations = len(convs)

	complete := Complete(convs, g.opts.MaxMessages)
	out.Complete = len(complete)

	texts := make([]string, len(complete))
	for i, c := range complete {
		texts[i] = Render(c, g.opts)
	}
	texts = FilterLength(texts, g.opts.TextMaxLen)
	out.Survivors = len(texts)

	Shuffle(texts, g.rng)
	out.TrainTexts, out.ValTexts = Split(texts, g.opts.TrainLen, g.opts.ValLen)
	out.Train = len(out.TrainTexts)
	out.Val = len(out.ValTexts)

	if err := WriteRecords(g.opts.TrainFile, out.TrainTexts); err != nil {
		return nil, fmt.Errorf("write train: %w", err)
	}
	if err := WriteRecords(g.opts.ValFile, out.ValTexts); err != nil {
		return nil, fmt.Errorf("write val: %w", err)
	}

	g.logger.Info("dataset generated",
		"channels", out.Channels,
		"conversations", out.Conversations,
		"complete", out.Complete,
		"survivors", out.Survivors,
		"train", out.Train,
		"val", out.Val,
	)
	return out, nil
}
