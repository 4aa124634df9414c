package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
)

// Built-in dataset profiles.
const (
	ProfilePlain = "plain"
	ProfileChat  = "chat"
)

// Profile is the YAML shape of a dataset profile. Zero values leave the
// base profile's setting in place.
type Profile struct {
	Base            string `yaml:"base"`
	TrainLen        int    `yaml:"train_len"`
	ValLen          int    `yaml:"val_len"`
	ConversationGap string `yaml:"conversation_gap"`
	MaxMessages     int    `yaml:"max_messages"`
	TextMaxLen      int    `yaml:"text_max_len"`
	Render          string `yaml:"render"`
	PromptLabel     string `yaml:"prompt_label"`
	ReplyLabel      string `yaml:"reply_label"`
	TrainFile       string `yaml:"train_file"`
	ValFile         string `yaml:"val_file"`
}

// BuiltinOptions returns the options for a named built-in profile.
func BuiltinOptions(name string) (dataset.Options, error) {
	switch name {
	case ProfilePlain, "":
		return dataset.DefaultOptions(), nil
	case ProfileChat:
		return dataset.ChatOptions(), nil
	default:
		return dataset.Options{}, fmt.Errorf("unknown profile %q", name)
	}
}

// LoadProfileFile reads a YAML profile and applies it on top of its base
// built-in profile.
func LoadProfileFile(path string) (dataset.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dataset.Options{}, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return dataset.Options{}, fmt.Errorf("parse profile: %w", err)
	}

	base, err := BuiltinOptions(p.Base)
	if err != nil {
		return dataset.Options{}, err
	}
	return p.Apply(base)
}

// Apply overlays the profile's non-zero fields onto o.
func (p Profile) Apply(o dataset.Options) (dataset.Options, error) {
	if p.ConversationGap != "" {
		gap, err := time.ParseDuration(p.ConversationGap)
		if err != nil {
			return o, fmt.Errorf("parse conversation_gap: %w", err)
		}
		o.ConversationGap = gap
	}
	if p.TrainLen != 0 {
		o.TrainLen = p.TrainLen
	}
	if p.ValLen != 0 {
		o.ValLen = p.ValLen
	}
	if p.MaxMessages != 0 {
		o.MaxMessages = p.MaxMessages
	}
	if p.TextMaxLen != 0 {
		o.TextMaxLen = p.TextMaxLen
	}
	if p.Render != "" {
		o.Render = dataset.RenderMode(p.Render)
	}
	if p.PromptLabel != "" {
		o.PromptLabel = p.PromptLabel
	}
	if p.ReplyLabel != "" {
		o.ReplyLabel = p.ReplyLabel
	}
	if p.TrainFile != "" {
		o.TrainFile = p.TrainFile
	}
	if p.ValFile != "" {
		o.ValFile = p.ValFile
	}
	return o, nil
}
