package dataset

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Complete keeps only conversations holding exactly n messages.
func Complete(convs []Conversation, n int) []Conversation {
	var out []Conversation
	for _, c := range convs {
		if len(c.Messages) == n {
			out = append(out, c)
		}
	}
	return out
}

// Render flattens a conversation to one line per message.
func Render(c Conversation, o Options) string {
	var sb strings.Builder
	for i, m := range c.Messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if o.Render == RenderRoles {
			fmt.Fprintf(&sb, "%s: ", roleLabel(o, i))
		}
		sb.WriteString(m.Text)
	}
	return sb.String()
}

func roleLabel(o Options, i int) string {
	if i%2 == 0 {
		if o.PromptLabel != "" {
			return o.PromptLabel
		}
		return DefaultPromptLabel
	}
	if o.ReplyLabel != "" {
		return o.ReplyLabel
	}
	return DefaultReplyLabel
}

// FilterLength drops texts whose length in characters is maxLen or more.
func FilterLength(texts []string, maxLen int) []string {
	var out []string
	for _, t := range texts {
		if utf8.RuneCountInString(t) < maxLen {
			out = append(out, t)
		}
	}
	return out
}

// Shuffle permutes texts in place using rng.
func Shuffle(texts []string, rng *rand.Rand) {
	rng.Shuffle(len(texts), func(i, j int) {
		texts[i], texts[j] = texts[j], texts[i]
	})
}

// Split returns the first trainLen texts and the valLen texts that follow.
// Anything beyond that is dropped; short inputs yield short splits.
func Split(texts []string, trainLen, valLen int) (train, val []string) {
	trainEnd := min(trainLen, len(texts))
	valEnd := min(trainLen+valLen, len(texts))
	return texts[:trainEnd], texts[trainEnd:valEnd]
}
