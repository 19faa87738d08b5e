// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidName is returned when the instance name is invalid
	ErrInvalidName = errors.New("invalid traas name")
	// ErrInvalidClientIPHeader is returned when the client ip header is not a valid header name
	ErrInvalidClientIPHeader = errors.New("invalid client ip header")
)
