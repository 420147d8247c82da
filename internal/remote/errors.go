// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package remote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote store failure. NotFound on a named parent
// is fatal to path resolution; RateLimited and Transient are retryable.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindRateLimited
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	default:
		return "other"
	}
}

// Error is the error type returned by Store implementations.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a remote NotFound failure.
func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindNotFound
}

// IsRetryable reports whether err is a transient or rate-limit failure
// worth retrying with backoff.
func IsRetryable(err error) bool {
	var re *Error
	return errors.As(err, &re) && (re.Kind == KindTransient || re.Kind == KindRateLimited)
}
