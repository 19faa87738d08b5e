// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAddress is returned when no listening address is configured
	ErrMissingAddress = errors.New("listening address is required")
	// ErrInvalidBasePath is returned when the base path is not absolute
	ErrInvalidBasePath = errors.New("base path must start with a slash")
	// ErrMissingTLSFiles is returned when tls is enabled without certificate or key
	ErrMissingTLSFiles = errors.New("tls is enabled but certPath or keyPath is empty")
)

// ErrServe is returned when the server fails to serve
type ErrServe struct {
	Err error
}

func (e *ErrServe) Error() string {
	return fmt.Sprintf("failed to serve API: %v", e.Err)
}

func (e *ErrServe) Unwrap() error {
	return e.Err
}

// ErrCreateOpenapiSchema is returned when the openapi schema of a response type cannot be generated
type ErrCreateOpenapiSchema struct {
	Name string
	Err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for %s: %v", e.Name, e.Err)
}

func (e ErrCreateOpenapiSchema) Unwrap() error {
	return e.Err
}
