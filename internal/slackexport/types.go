package slackexport

import "encoding/json"

// OptString is an optional string field that remembers whether its key
// appeared in the record. A key present with a null value is still present.
type OptString struct {
	Value   string
	Present bool
	Null    bool
}

// Opt returns a present field holding v.
func Opt(v string) OptString {
	return OptString{Value: v, Present: true}
}

// UnmarshalJSON is only invoked when the key exists, so any call marks the
// field present.
func (o *OptString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value, o.Null = "", true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// RawMessage is a single record from a channel's export file.
type RawMessage struct {
	Text     string    `json:"text"`
	TS       string    `json:"ts"`
	ThreadTS OptString `json:"thread_ts"`
	Subtype  OptString `json:"subtype"`
	User     OptString `json:"user"`
}

// Eligible reports whether the record can contribute to a conversation.
// Records without a user key or with empty text are dropped.
func (m RawMessage) Eligible() bool {
	return m.User.Present && len(m.Text) > 0
}

// IsThreadRoot reports whether the record starts a thread.
func (m RawMessage) IsThreadRoot() bool {
	return m.ThreadTS.Present && !m.ThreadTS.Null && m.ThreadTS.Value == m.TS
}

// ThreadKey identifies a bucket: either the channel's main flow or the thread
// rooted at a given timestamp.
type ThreadKey struct {
	root   string
	thread bool
}

// MainKey is the bucket for top-level channel messages.
func MainKey() ThreadKey {
	return ThreadKey{}
}

// ThreadRoot is the bucket for the thread rooted at ts.
func ThreadRoot(ts string) ThreadKey {
	return ThreadKey{root: ts, thread: true}
}

// IsMain reports whether k is the main bucket.
func (k ThreadKey) IsMain() bool {
	return !k.thread
}

func (k ThreadKey) String() string {
	if !k.thread {
		return "main"
	}
	return "thread:" + k.root
}

// Bucket is an ordered run of records sharing a thread key.
type Bucket struct {
	Key      ThreadKey
	Messages []RawMessage
}

// Channel holds the buckets built from one channel directory, in the order
// each key was first seen.
type Channel struct {
	Name    string
	Files   int
	Buckets []Bucket
}

// Records returns the total number of records across all buckets.
// Thread starters are counted twice.
func (c Channel) Records() int {
	n := 0
	for _, b := range c.Buckets {
		n += len(b.Messages)
	}
	return n
}
