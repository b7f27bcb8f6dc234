package keyedstore

import (
	"errors"
	"fmt"
)

// NotFound - Custom error to inform that no entry was found for a key
type NotFound struct {
	Key string
}

// Error - Used to notify that no entry was found
func (E NotFound) Error() string {
	return fmt.Sprintf("no entry found for key %q", E.Key)
}

// FileNotFound - Custom error to inform that a persisted table does not exist
type FileNotFound struct {
	Path string
	Err  error
}

// Error - Used to notify that the table file is missing
func (E FileNotFound) Error() string {
	return fmt.Sprintf("table file %s not found: %v", E.Path, E.Err)
}

func (E FileNotFound) Unwrap() error {
	return E.Err
}

// MalformedData - Custom error to inform that a persisted table could not be
// read as a sequence of key/value pairs
type MalformedData struct {
	Path   string
	Reason string
	Err    error
}

// Error - Used to notify that the table file is malformed
func (E MalformedData) Error() string {
	if E.Err == nil {
		return fmt.Sprintf("malformed table file %s: %s", E.Path, E.Reason)
	}
	return fmt.Sprintf("malformed table file %s: %s: %v", E.Path, E.Reason, E.Err)
}

func (E MalformedData) Unwrap() error {
	return E.Err
}

// IsNotFound reports whether err, or anything it wraps, is a NotFound.
func IsNotFound(err error) bool {
	var e NotFound
	return errors.As(err, &e)
}

// IsFileNotFound reports whether err, or anything it wraps, is a FileNotFound.
func IsFileNotFound(err error) bool {
	var e FileNotFound
	return errors.As(err, &e)
}

// IsMalformedData reports whether err, or anything it wraps, is a MalformedData.
func IsMalformedData(err error) bool {
	var e MalformedData
	return errors.As(err, &e)
}
