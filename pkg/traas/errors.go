// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"errors"
	"fmt"
)

// ErrFinalShutdown is returned by [Traas.Run] once all components are shut down
var ErrFinalShutdown = errors.New("traas was shut down")

// ErrShutdown holds any errors that may
// have occurred during shutdown of traas
type ErrShutdown struct {
	errAPI      error
	errMetrics  error
	errTraceLog error
}

// HasError returns true if any of the errors are set
func (e ErrShutdown) HasError() bool {
	return e.errAPI != nil || e.errMetrics != nil || e.errTraceLog != nil
}

func (e ErrShutdown) Error() string {
	return fmt.Sprintf("shutdown failed: api=%v, metrics=%v, traceLog=%v", e.errAPI, e.errMetrics, e.errTraceLog)
}

// ErrInvalidClientIP is returned when the address of the requesting client cannot be determined
type ErrInvalidClientIP struct {
	Addr string
}

func (e *ErrInvalidClientIP) Error() string {
	return fmt.Sprintf("invalid client ip %q", e.Addr)
}
