package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/MikeSquared-Agency/chilly/internal/slackexport"
)

var newlineRun = regexp.MustCompile(`\n+`)

// isTrailingSpace matches Unicode white space plus the ASCII information
// separators U+001C..U+001F.
func isTrailingSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Preprocess normalises message text: trailing whitespace is stripped, each
// run of newlines becomes ", " and a period is always appended.
func Preprocess(text string) string {
	text = strings.TrimRightFunc(text, isTrailingSpace)
	text = newlineRun.ReplaceAllString(text, ", ")
	return text + "."
}

// builder accumulates the conversation in progress. The last turn is replaced,
// never mutated through a shared reference.
type builder struct {
	msgs []Message
}

func (b *builder) last() (Message, bool) {
	if len(b.msgs) == 0 {
		return Message{}, false
	}
	return b.msgs[len(b.msgs)-1], true
}

func (b *builder) mergeLast(text string) {
	last := b.msgs[len(b.msgs)-1]
	last.Text += " " + text
	b.msgs[len(b.msgs)-1] = last
}

func (b *builder) push(m Message) {
	b.msgs = append(b.msgs, m)
}

// take hands over the accumulated turns and resets the builder.
func (b *builder) take() []Message {
	msgs := b.msgs
	b.msgs = nil
	return msgs
}

// Segment walks one bucket in stored order and splits it into conversations.
// A conversation closes when it holds maxMessages turns or, in the main
// bucket only, when the gap to the previous turn exceeds gap. The final
// conversation is emitted even if short.
func Segment(key slackexport.ThreadKey, records []slackexport.RawMessage, maxMessages int, gap time.Duration) ([][]Message, error) {
	var (
		out [][]Message
		cur builder
	)
	gapSeconds := gap.Seconds()

	for _, rec := range records {
		if !rec.Eligible() {
			continue
		}
		seconds, err := strconv.ParseFloat(rec.TS, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: ts %q: %v", ErrInvalidTimestamp, rec.TS, err)
		}
		text := Preprocess(rec.Text)

		if last, ok := cur.last(); ok {
			if (key.IsMain() && seconds-last.seconds > gapSeconds) || len(cur.msgs) >= maxMessages {
				out = append(out, cur.take())
			} else if rec.User.Value == last.User {
				cur.mergeLast(text)
				continue
			}
		}

		cur.push(Message{
			Text:    text,
			TS:      rec.TS,
			User:    rec.User.Value,
			seconds: seconds,
		})
	}

	if len(cur.msgs) > 0 {
		out = append(out, cur.take())
	}
	return out, nil
}

// SegmentChannel segments every bucket of a channel, in bucket order.
func SegmentChannel(ch slackexport.Channel, maxMessages int, gap time.Duration) ([]Conversation, error) {
	var convs []Conversation
	for _, b := range ch.Buckets {
		windows, err := Segment(b.Key, b.Messages, maxMessages, gap)
		if err != nil {
			return nil, fmt.Errorf("segment %s/%s: %w", ch.Name, b.Key, err)
		}
		for _, w := range windows {
			convs = append(convs, Conversation{
				Channel:  ch.Name,
				Thread:   b.Key.String(),
				Messages: w,
			})
		}
	}
	return convs, nil
}
