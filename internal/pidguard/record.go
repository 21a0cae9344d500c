// Package pidguard keeps a single instance of a script running per lock key.
//
// The lock file holds one line, "{pid}|{start_time}". Recording the holder's
// start time next to its pid lets a later check tell a live holder from an
// unrelated process that was handed a recycled pid.
package pidguard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Status is the outcome of a lock check.
type Status int

const (
	// StatusNone is only returned together with an error.
	StatusNone Status = iota
	// StatusOK means the calling process holds the lock.
	StatusOK
	// StatusOtherRunning means a live process holds the lock.
	StatusOtherRunning
	// StatusOtherNotRunning means a stale lock was found and taken over.
	StatusOtherNotRunning
	// StatusOtherUnknown means the holder could not be classified. The lock
	// file was left untouched.
	StatusOtherUnknown
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "PID_NONE"
	case StatusOK:
		return "PID_OK"
	case StatusOtherRunning:
		return "PID_OTHER_RUNNING"
	case StatusOtherNotRunning:
		return "PID_OTHER_NOT_RUNNING"
	case StatusOtherUnknown:
		return "PID_OTHER_UNKNOWN"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ErrMalformedRecord is returned by ParseRecord for content that is not a
// "{pid}|{start_time}" pair.
var ErrMalformedRecord = errors.New("malformed pid record")

// Record identifies one process instance.
type Record struct {
	PID int
	// StartTime is when the process began, in epoch seconds.
	StartTime int64
}

// String renders the on-disk form.
func (r Record) String() string {
	return fmt.Sprintf("%d|%d", r.PID, r.StartTime)
}

// ParseRecord parses the on-disk form. Surrounding whitespace is ignored.
func ParseRecord(s string) (Record, error) {
	s = strings.TrimSpace(s)
	pidStr, startStr, ok := strings.Cut(s, "|")
	if !ok || strings.Contains(startStr, "|") {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedRecord, s)
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Record{}, fmt.Errorf("%w: bad pid %q", ErrMalformedRecord, pidStr)
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return Record{}, fmt.Errorf("%w: bad start time %q", ErrMalformedRecord, startStr)
	}
	return Record{PID: pid, StartTime: start}, nil
}
