package domain

import (
	"errors"
	"fmt"
)

// ErrPersistenceDisabled is returned by stores that do not keep anything.
var ErrPersistenceDisabled = errors.New("persistence not configured")

// ValidationError reports unusable run input (no topics, bad region).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// FetchError reports a transport or parse failure for one topic's feed.
type FetchError struct {
	Topic  string
	Region string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch topic %q (region %s): %v", e.Topic, e.Region, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SummarizationError reports a failed or empty generation stream.
type SummarizationError struct {
	Backend string
	Err     error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize via %s: %v", e.Backend, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// PersistenceError reports a preference store load/save failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("preferences %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
