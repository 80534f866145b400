// Package errors provides the structured error type used across liquify and a
// collector for gathering per-file failures during a full build.
package errors

import (
	"fmt"
	"strings"
	"sync"
)

// FileError records a failure to process one source file.
type FileError struct {
	File string
	Err  error
}

// Error implements the error interface
func (fe *FileError) Error() string {
	return fmt.Sprintf("%s: %v", fe.File, fe.Err)
}

// Unwrap returns the underlying error
func (fe *FileError) Unwrap() error {
	return fe.Err
}

// ErrorCollector collects per-file errors so one broken page does not stop a
// full build.
type ErrorCollector struct {
	errors []FileError
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]FileError, 0),
	}
}

// Add records an error for a file. Nil errors are ignored.
func (ec *ErrorCollector) Add(file string, err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, FileError{File: file, Err: err})
}

// GetErrors returns a copy of the collected errors
func (ec *ErrorCollector) GetErrors() []FileError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]FileError, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = ec.errors[:0]
}

// Err returns nil when nothing was collected, the single error when there is
// one, and a *FileErrors otherwise.
func (ec *ErrorCollector) Err() error {
	errs := ec.GetErrors()
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return &errs[0]
	}
	return FileErrors(errs)
}

// FileErrors is the error for a build in which several files failed. errors.Is
// and errors.As see every file's error.
type FileErrors []FileError

func (fe FileErrors) Error() string {
	lines := make([]string, 0, len(fe))
	for i := range fe {
		lines = append(lines, "  "+fe[i].Error())
	}
	return fmt.Sprintf("%d files failed:\n%s", len(fe), strings.Join(lines, "\n"))
}

func (fe FileErrors) Unwrap() []error {
	errs := make([]error, len(fe))
	for i := range fe {
		errs[i] = &fe[i]
	}
	return errs
}
