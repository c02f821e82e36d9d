// SPDX-License-Identifier: MIT
package gitx

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotARepository marks paths outside any git working tree.
	ErrNotARepository = errors.New("not a git repository")
	// ErrNoRemote marks repositories without the requested remote.
	ErrNoRemote = errors.New("no remote configured")
	// ErrDetachedHead marks a HEAD that does not point at a branch.
	ErrDetachedHead = errors.New("HEAD is detached")
)

// CommandError wraps a failed git invocation with the operation that
// needed it. Stderr is kept for classification but is not part of the
// error text.
type CommandError struct {
	Op      string
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Command)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// withOp attaches an operation name to a CommandError, or wraps any other
// error with the operation as context.
func withOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		cp := *cmdErr
		cp.Op = op
		return &cp
	}
	return &CommandError{Op: op, Err: err}
}

// ClassifyError maps git/process errors into broad actionable categories.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}
	if errors.Is(err, ErrNotARepository) {
		return "not_a_repo"
	}
	if errors.Is(err, ErrNoRemote) {
		return "no_remote"
	}
	if errors.Is(err, ErrDetachedHead) {
		return "detached_head"
	}

	msg := strings.ToLower(errorText(err))
	switch {
	case containsAny(msg, "not a git repository"):
		return "not_a_repo"
	case containsAny(msg, "no such remote", "no remote repository"):
		return "no_remote"
	case containsAny(msg, "permission denied", "authentication failed", "access denied", "publickey", "could not read username", "credential"):
		return "auth"
	case containsAny(msg, "could not resolve host", "network is unreachable", "connection timed out", "failed to connect", "temporary failure in name resolution", "tls handshake timeout"):
		return "network"
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return "timeout"
	case containsAny(msg, "bad object", "corrupt", "object file"):
		return "corrupt"
	default:
		return "unknown"
	}
}

// IsNotARepository reports whether err says the directory is outside a
// git working tree.
func IsNotARepository(err error) bool {
	return ClassifyError(err) == "not_a_repo"
}

func errorText(err error) string {
	text := err.Error()
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		text += "\n" + cmdErr.Stderr
	}
	return text
}

func containsAny(msg string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
