package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
)

func TestBuiltinOptions(t *testing.T) {
	plain, err := BuiltinOptions(ProfilePlain)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if plain.MaxMessages != 2 || plain.Render != dataset.RenderPlain {
		t.Errorf("plain = %+v", plain)
	}

	chat, err := BuiltinOptions(ProfileChat)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if chat.MaxMessages != 4 || chat.Render != dataset.RenderRoles {
		t.Errorf("chat = %+v", chat)
	}
	if chat.ConversationGap != 15*time.Minute || chat.TextMaxLen != 384 {
		t.Errorf("chat gap/len = %v/%d", chat.ConversationGap, chat.TextMaxLen)
	}

	if _, err := BuiltinOptions("nope"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestLoadProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `base: chat
train_len: 32000
val_len: 1000
conversation_gap: 10m
reply_label: Bot
train_file: out/train.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	o, err := LoadProfileFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.TrainLen != 32000 || o.ValLen != 1000 {
		t.Errorf("train/val = %d/%d", o.TrainLen, o.ValLen)
	}
	if o.ConversationGap != 10*time.Minute {
		t.Errorf("gap = %v", o.ConversationGap)
	}
	if o.MaxMessages != 4 || o.Render != dataset.RenderRoles {
		t.Errorf("expected chat base to carry through, got %+v", o)
	}
	if o.PromptLabel != "User" || o.ReplyLabel != "Bot" {
		t.Errorf("labels = %q/%q", o.PromptLabel, o.ReplyLabel)
	}
	if o.TrainFile != "out/train.json" || o.ValFile != "data/val.json" {
		t.Errorf("files = %q/%q", o.TrainFile, o.ValFile)
	}
}

func TestLoadProfileFile_BadGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("conversation_gap: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadProfileFile(path); err == nil {
		t.Fatal("expected error for unparseable gap")
	}
}
