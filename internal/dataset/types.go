package dataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTimestamp is returned when a record's ts does not parse as a number.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("invalid options")
)

// Message is one speaker turn. Consecutive raw messages from the same user
// fold into a single Message that keeps the first message's timestamp.
type Message struct {
	Text string
	TS   string
	User string

	seconds float64
}

// Conversation is a bounded window of consecutive turns.
type Conversation struct {
	Channel  string
	Thread   string
	Messages []Message
}

// RenderMode selects how a conversation is flattened to text.
type RenderMode string

const (
	// RenderPlain joins message texts with newlines.
	RenderPlain RenderMode = "plain"
	// RenderRoles prefixes each line with alternating role labels.
	RenderRoles RenderMode = "roles"
)

// Default role labels for RenderRoles.
const (
	DefaultPromptLabel = "User"
	DefaultReplyLabel  = "Chilly"
)

// Options configures a dataset generation run.
type Options struct {
	TrainLen int `json:"train_len"`
	ValLen   int `json:"val_len"`

	ConversationGap time.Duration `json:"conversation_gap_ns"`
	MaxMessages     int           `json:"max_messages"`
	TextMaxLen      int           `json:"text_max_len"`

	Render      RenderMode `json:"render"`
	PromptLabel string     `json:"prompt_label,omitempty"`
	ReplyLabel  string     `json:"reply_label,omitempty"`

	TrainFile string `json:"train_file"`
	ValFile   string `json:"val_file"`
}

// DefaultOptions returns the plain-text configuration: two-message windows
// rendered without role labels. It sets no split sizes; callers choose them.
func DefaultOptions() Options {
	return Options{
		ConversationGap: 15 * time.Minute,
		MaxMessages:     2,
		TextMaxLen:      384,
		Render:          RenderPlain,
		TrainFile:       "data/train.json",
		ValFile:         "data/val.json",
	}
}

// Split sizes of the dialogue fine-tuning run.
const (
	ChatTrainLen = 32000
	ChatValLen   = 1000
)

// ChatOptions returns the dialogue configuration used for fine-tuning:
// four-message windows with alternating User/Chilly labels, split into
// ChatTrainLen training and ChatValLen validation samples.
func ChatOptions() Options {
	o := DefaultOptions()
	o.TrainLen = ChatTrainLen
	o.ValLen = ChatValLen
	o.MaxMessages = 4
	o.Render = RenderRoles
	o.PromptLabel = DefaultPromptLabel
	o.ReplyLabel = DefaultReplyLabel
	return o
}

// Validate checks that the options can drive a run.
func (o Options) Validate() error {
	switch {
	case o.TrainLen < 0 || o.ValLen < 0:
		return fmt.Errorf("%w: train/val lengths must be >= 0", ErrInvalidOptions)
	case o.MaxMessages < 1:
		return fmt.Errorf("%w: max messages must be >= 1", ErrInvalidOptions)
	case o.TextMaxLen < 1:
		return fmt.Errorf("%w: text max length must be >= 1", ErrInvalidOptions)
	case o.ConversationGap < 0:
		return fmt.Errorf("%w: conversation gap must be >= 0", ErrInvalidOptions)
	case o.TrainFile == "" || o.ValFile == "":
		return fmt.Errorf("%w: train and val files are required", ErrInvalidOptions)
	}
	switch o.Render {
	case RenderPlain, RenderRoles:
	default:
		return fmt.Errorf("%w: unknown render mode %q", ErrInvalidOptions, o.Render)
	}
	return nil
}

// Result summarises a completed run.
type Result struct {
	Channels      int `json:"channels"`
	Files         int `json:"files"`
	Conversations int `json:"conversations"`
	Complete      int `json:"complete"`
	Survivors     int `json:"survivors"`
	Train         int `json:"train"`
	Val           int `json:"val"`
}
