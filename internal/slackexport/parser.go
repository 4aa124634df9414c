package slackexport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// bucketSet accumulates records per thread key, remembering first-seen order.
type bucketSet struct {
	order []ThreadKey
	byKey map[ThreadKey][]RawMessage
}

func newBucketSet() *bucketSet {
	return &bucketSet{byKey: make(map[ThreadKey][]RawMessage)}
}

func (s *bucketSet) add(key ThreadKey, m RawMessage) {
	if _, ok := s.byKey[key]; !ok {
		s.order = append(s.order, key)
	}
	s.byKey[key] = append(s.byKey[key], m)
}

// classify routes a record into its buckets. Thread starters land in both
// the main bucket and their own thread, replies only in their thread, and
// messages without a subtype key in main. System events are dropped.
func (s *bucketSet) classify(m RawMessage) {
	switch {
	case m.ThreadTS.Present:
		if m.IsThreadRoot() {
			s.add(MainKey(), m)
		}
		s.add(ThreadRoot(m.ThreadTS.Value), m)
	case !m.Subtype.Present:
		s.add(MainKey(), m)
	}
}

func (s *bucketSet) buckets() []Bucket {
	out := make([]Bucket, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, Bucket{Key: k, Messages: s.byKey[k]})
	}
	return out
}

// LoadChannels reads every channel directory under inputDir and threads its
// export files. Channels and files are visited in lexical order.
func LoadChannels(inputDir string) ([]Channel, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var channels []Channel
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ch, err := LoadChannel(filepath.Join(inputDir, e.Name()))
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// LoadChannel threads the *.json export files directly inside dir.
func LoadChannel(dir string) (Channel, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return Channel{}, fmt.Errorf("glob %q: %w", dir, err)
	}

	set := newBucketSet()
	for _, path := range paths {
		msgs, err := ParseFile(path)
		if err != nil {
			return Channel{}, err
		}
		for _, m := range msgs {
			set.classify(m)
		}
	}

	return Channel{
		Name:    filepath.Base(dir),
		Files:   len(paths),
		Buckets: set.buckets(),
	}, nil
}

// ParseFile decodes one export file: a JSON array of message records.
func ParseFile(path string) ([]RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	var msgs []RawMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	return msgs, nil
}
