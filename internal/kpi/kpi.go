// Package kpi summarizes the automation event log.
package kpi

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
)

// DefaultLogPath is where automation jobs append their JSONL events.
const DefaultLogPath = "automation/kpi.log"

// UnknownTarget counts events without a "target" key.
const UnknownTarget = "unknown"

// Count is one [target, count] pair. Target is whatever JSON value the
// event carried, usually a string.
type Count struct {
	Target any
	Count  int
}

// MarshalJSON encodes the pair as a two-element array.
func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Target, c.Count})
}

// Summary holds per-target counts plus the number of lines that were skipped.
type Summary struct {
	Counts  []Count
	Skipped int
}

// SummarizeFile summarizes the log at path. A missing file is an empty summary.
func SummarizeFile(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Summary{Counts: []Count{}}, nil
		}
		return nil, fmt.Errorf("open kpi log: %w", err)
	}
	defer f.Close()

	return Summarize(f)
}

// Summarize counts events per target, most frequent first. Ties keep the
// order in which targets first appeared. Lines that are not JSON objects,
// or whose target cannot be a map key, are skipped.
func Summarize(r io.Reader) (*Summary, error) {
	var (
		summary = &Summary{}
		index   = make(map[any]int)
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		target, ok := targetOf(scanner.Bytes())
		if !ok {
			summary.Skipped++
			continue
		}
		if i, seen := index[target]; seen {
			summary.Counts[i].Count++
			continue
		}
		index[target] = len(summary.Counts)
		summary.Counts = append(summary.Counts, Count{Target: target, Count: 1})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read kpi log: %w", err)
	}

	if summary.Counts == nil {
		summary.Counts = []Count{}
	}
	sort.SliceStable(summary.Counts, func(i, j int) bool {
		return summary.Counts[i].Count > summary.Counts[j].Count
	})
	return summary, nil
}

func targetOf(line []byte) (any, bool) {
	var event map[string]any
	if err := json.Unmarshal(line, &event); err != nil || event == nil {
		return nil, false
	}
	target, ok := event["target"]
	if !ok {
		return UnknownTarget, true
	}
	if target != nil && !reflect.TypeOf(target).Comparable() {
		return nil, false
	}
	return target, true
}

// Render writes the counts as an indented JSON array of [target, count] pairs.
func Render(w io.Writer, s *Summary) error {
	data, err := json.MarshalIndent(s.Counts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode kpi summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
