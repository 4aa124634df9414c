package dataset

import (
	"slices"
	"strings"
	"testing"
)

func TestRender_Plain(t *testing.T) {
	c := Conversation{Messages: []Message{
		{Text: "Deploy auth service."},
		{Text: "Deploying now."},
	}}

	got := Render(c, DefaultOptions())
	if got != "Deploy auth service.\nDeploying now." {
		t.Errorf("Render = %q", got)
	}
}

func TestRender_RoleLabels(t *testing.T) {
	c := Conversation{Messages: []Message{
		{Text: "a."}, {Text: "b."}, {Text: "c."}, {Text: "d."},
	}}

	got := Render(c, ChatOptions())
	want := "User: a.\nChilly: b.\nUser: c.\nChilly: d."
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_CustomLabels(t *testing.T) {
	o := ChatOptions()
	o.PromptLabel = "Human"
	o.ReplyLabel = "Bot"
	c := Conversation{Messages: []Message{{Text: "x."}, {Text: "y."}}}

	if got := Render(c, o); got != "Human: x.\nBot: y." {
		t.Errorf("Render = %q", got)
	}
}

func TestComplete_ExactCountOnly(t *testing.T) {
	convs := []Conversation{
		{Messages: make([]Message, 1)},
		{Messages: make([]Message, 2)},
		{Messages: make([]Message, 2)},
	}

	got := Complete(convs, 2)
	if len(got) != 2 {
		t.Errorf("expected 2 complete conversations, got %d", len(got))
	}
}

func TestFilterLength_Boundary(t *testing.T) {
	atLimit := strings.Repeat("x", 10)
	below := strings.Repeat("x", 9)

	got := FilterLength([]string{atLimit, below}, 10)
	if len(got) != 1 || got[0] != below {
		t.Errorf("FilterLength = %q, want only the 9-char text", got)
	}
}

func TestFilterLength_CountsCharacters(t *testing.T) {
	// 9 characters, 27 bytes.
	text := strings.Repeat("語", 9)

	got := FilterLength([]string{text}, 10)
	if len(got) != 1 {
		t.Errorf("expected multibyte text under the character limit to survive")
	}
}

func TestSplit(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name               string
		trainLen, valLen   int
		wantTrain, wantVal []string
	}{
		{"exact", 3, 2, []string{"a", "b", "c"}, []string{"d", "e"}},
		{"remainder dropped", 2, 1, []string{"a", "b"}, []string{"c"}},
		{"no train", 0, 2, nil, []string{"a", "b"}},
		{"undersized", 10, 5, []string{"a", "b", "c", "d", "e"}, nil},
		{"val truncated", 4, 5, []string{"a", "b", "c", "d"}, []string{"e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, val := Split(texts, tt.trainLen, tt.valLen)
			if !slices.Equal(train, tt.wantTrain) {
				t.Errorf("train = %q, want %q", train, tt.wantTrain)
			}
			if !slices.Equal(val, tt.wantVal) {
				t.Errorf("val = %q, want %q", val, tt.wantVal)
			}
			if len(train)+len(val) > tt.trainLen+tt.valLen {
				t.Errorf("split produced more than requested")
			}
			if len(train) != min(tt.trainLen, len(texts)) {
				t.Errorf("len(train) = %d, want %d", len(train), min(tt.trainLen, len(texts)))
			}
		})
	}
}

func TestShuffle_Deterministic(t *testing.T) {
	base := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	first := slices.Clone(base)
	second := slices.Clone(base)
	Shuffle(first, NewSeededRand(42))
	Shuffle(second, NewSeededRand(42))

	if !slices.Equal(first, second) {
		t.Errorf("same seed produced %q and %q", first, second)
	}

	sorted := slices.Clone(first)
	slices.Sort(sorted)
	if !slices.Equal(sorted, base) {
		t.Errorf("shuffle lost or duplicated items: %q", first)
	}
}
