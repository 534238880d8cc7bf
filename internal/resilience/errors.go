package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Class buckets pipeline failures by recovery policy. Only ClassConfig aborts
// a run before it starts; everything else is recovered locally and surfaced
// in the end-of-run report.
type Class int

const (
	// ClassTransient covers timeouts, 5xx, connection resets. The batch
	// continues past the failed unit; no automatic retry.
	ClassTransient Class = iota
	// ClassSession covers rejected warm-up steps. Logged as a warning, the
	// run proceeds optimistically.
	ClassSession
	// ClassParse covers extraction pattern misses. Represented as absent
	// fields, never raised.
	ClassParse
	// ClassPersistence covers store write rejections, isolated per record.
	ClassPersistence
	// ClassConfig covers missing required run parameters. Fatal before any
	// network activity begins.
	ClassConfig
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassSession:
		return "session"
	case ClassParse:
		return "parse"
	case ClassPersistence:
		return "persistence"
	case ClassConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ClassedError tags an error with its recovery class.
type ClassedError struct {
	Err   error
	Class Class
}

func (e *ClassedError) Error() string { return e.Err.Error() }
func (e *ClassedError) Unwrap() error { return e.Err }

// Classed wraps err with an explicit class.
func Classed(err error, c Class) *ClassedError {
	return &ClassedError{Err: err, Class: c}
}

// ClassOf returns the class of err: an explicit ClassedError tag if present,
// otherwise ClassTransient when the error looks transient, ClassPersistence
// as the fallback for everything else.
func ClassOf(err error) Class {
	var ce *ClassedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	if IsTransient(err) {
		return ClassTransient
	}
	return ClassPersistence
}

// TransientError wraps an error that stems from unreliable external state
// (429, 5xx, network timeout). The pipeline records it and moves on.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches common transient error patterns (network
// timeouts, connection resets, DNS failures).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"i/o timeout",
		"tls handshake timeout",
		"unexpected eof",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
