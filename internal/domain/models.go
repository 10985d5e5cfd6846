package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by the pipeline, its collaborators and front ends.

// MaxTopics caps how many topics a single run (and a preference record) may carry.
const MaxTopics = 3

// NewsItem is one normalized feed entry.
type NewsItem struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
}

// TopicResult holds the deduplicated items for one topic, most recent first.
type TopicResult struct {
	Topic string     `json:"topic"`
	Items []NewsItem `json:"items"`
}

// TopicSet is the ordered topic -> items mapping handed to the summarizer.
type TopicSet []TopicResult

// Len returns the number of topics in the set.
func (s TopicSet) Len() int { return len(s) }

// Topics returns topic names in insertion order.
func (s TopicSet) Topics() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, r.Topic)
	}
	return out
}

// Lookup returns the result for topic, if present.
func (s TopicSet) Lookup(topic string) (TopicResult, bool) {
	for _, r := range s {
		if r.Topic == topic {
			return r, true
		}
	}
	return TopicResult{}, false
}

// AggregateRow is the flat display projection of a topic result entry.
type AggregateRow struct {
	Topic  string `json:"topic"`
	Source string `json:"source"`
	Title  string `json:"title"`
}

// Rows flattens a topic result into display rows, preserving item order.
func (r TopicResult) Rows() []AggregateRow {
	rows := make([]AggregateRow, 0, len(r.Items))
	for _, itm := range r.Items {
		rows = append(rows, AggregateRow{Topic: r.Topic, Source: itm.Source, Title: itm.Title})
	}
	return rows
}

// PreferenceRecord is the small per-profile record kept by the preference store.
type PreferenceRecord struct {
	Topics      []string  `json:"topics"`
	Country     string    `json:"country"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Slots returns exactly MaxTopics topic slots, padding with empty strings.
func (p PreferenceRecord) Slots() [MaxTopics]string {
	var out [MaxTopics]string
	for i := 0; i < len(p.Topics) && i < MaxTopics; i++ {
		out[i] = strings.TrimSpace(p.Topics[i])
	}
	return out
}
