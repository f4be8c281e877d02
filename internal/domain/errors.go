package domain

import (
	"fmt"
	"strings"
)

// RemoteFetchError is returned when the job board answers with a non-2xx status.
type RemoteFetchError struct {
	URL        string
	StatusCode int
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// DataSourceMissingError reports an expected input (file or table) that is absent.
type DataSourceMissingError struct {
	Path      string
	Available []string // sibling files, when known
}

func (e *DataSourceMissingError) Error() string {
	msg := fmt.Sprintf("data source missing: %s", e.Path)
	if len(e.Available) > 0 {
		msg += " (available: " + strings.Join(e.Available, ", ") + ")"
	}
	return msg
}

// MalformedSourceError reports an input that exists but cannot be parsed.
type MalformedSourceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed source %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed source %s: %s", e.Path, e.Reason)
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }
