/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package vaulterr defines the vault's error taxonomy: a small set of stable
// kinds that callers match on, instead of sentinel errors per failure site.
package vaulterr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the five error families a failure belongs to.
// Kinds are stable and intended for programmatic matching; new variants are
// appended, never renumbered.
type Kind uint8

const (
	KindFormat     Kind = iota // invalid magic, unsupported version, checksum mismatch
	KindIntegrity              // payload/WAL checksum mismatch, ordering violation, bound exceeded
	KindSchema                 // URI collision, dimension mismatch, unknown predicate
	KindResource               // capacity ticket denied, I/O failure, hook timeout
	KindLifecycle              // feature not enabled (temporal track, replay)
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindIntegrity:
		return "integrity"
	case KindSchema:
		return "schema"
	case KindResource:
		return "resource"
	case KindLifecycle:
		return "lifecycle"
	default:
		return "unknown"
	}
}

// Error wraps a Kind, the operation that failed, and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error. op should be a short "package.function" label,
// matching the convention used across the vault packages.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf constructs an Error from a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind of err, if err (or something it wraps) is an
// *Error. The second return is false for errors outside this taxonomy.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err's Kind matches kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
