package main

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies why a single page failed to render.
type ErrorKind string

const (
	KindUpstream ErrorKind = "upstream"
	KindRender   ErrorKind = "render"
	KindWrite    ErrorKind = "write"
)

// PageError is the failure of one page. It never aborts the other pages.
type PageError struct {
	Page string
	Kind ErrorKind
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %s error: %v", e.Page, e.Kind, e.Err)
}

func (e *PageError) Cause() error {
	return e.Err
}

func pageError(page string, kind ErrorKind, err error, message string) *PageError {
	return &PageError{Page: page, Kind: kind, Err: errors.Wrap(err, message)}
}

// StatusError is returned when a remote API answers with an unexpected status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}
