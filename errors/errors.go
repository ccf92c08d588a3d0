// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrActorNotFound indicates that the named actor is not registered in the World.
	ErrActorNotFound = errors.New("actor not found")

	// ErrActorAlreadyExists is returned when creating an actor under a name already in use.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrReservedName is returned when attempting to register an actor with a reserved name.
	ErrReservedName = errors.New("actor name is reserved")

	// ErrInvalidActorName is returned when the actor name is empty or blank.
	ErrInvalidActorName = errors.New("invalid actor name")

	// ErrUndefinedActor is returned when the actor instance handed to the World is nil.
	ErrUndefinedActor = errors.New("actor is not defined")

	// ErrMailboxDisposed is returned when enqueueing into a closed mailbox.
	ErrMailboxDisposed = errors.New("mailbox has been disposed")

	// ErrMailboxFull is returned when a bounded mailbox is at capacity.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrUnresolvedCorrelation is logged when a reply arrives for an unknown correlation id.
	ErrUnresolvedCorrelation = errors.New("no pending request for correlation id")

	// ErrPersistenceFailure is returned when state could not be saved or loaded.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrWorldStopped is returned by World operations once the World has been stopped.
	ErrWorldStopped = errors.New("world is stopped")

	// ErrRequestCanceled indicates that a request was abandoned before its reply arrived.
	ErrRequestCanceled = errors.New("request canceled")

	// ErrNoSender is returned when a reply is attempted on a message without sender.
	ErrNoSender = errors.New("message has no sender")

	// ErrSchedulerNotStarted is returned when attempting to use the scheduler before it has started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")

	// ErrInvalidSchedule is returned when a schedule request is missing its time, target or payload.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrInitFailure is returned when the actor's PreStart hook fails.
	ErrInitFailure = errors.New("preStart failed")
)

func NewErrActorNotFound(name string) error {
	return fmt.Errorf("(actor=%s) %w", name, ErrActorNotFound)
}

func NewErrActorAlreadyExists(name string) error {
	return fmt.Errorf("actor=(%s) %w", name, ErrActorAlreadyExists)
}

func NewErrReservedName(name string) error {
	return fmt.Errorf("name=(%s) %w", name, ErrReservedName)
}

func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

func NewErrPersistenceFailure(err error) error {
	return errors.Join(ErrPersistenceFailure, err)
}

func NewErrInvalidSchedule(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidSchedule)
}

// PanicError wraps the value recovered from a panicking handler.
type PanicError struct {
	err error
}

var _ error = (*PanicError)(nil)

func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// HandlerError is reported when a message handler fails.
// The actor keeps consuming after a HandlerError.
type HandlerError struct {
	actor   string
	command string
	err     error
}

var _ error = (*HandlerError)(nil)

func NewHandlerError(actor, command string, err error) *HandlerError {
	return &HandlerError{actor: actor, command: command, err: err}
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("actor=(%s) command=(%s) handler failed: %v", e.actor, e.command, e.err)
}

func (e *HandlerError) Unwrap() error {
	return e.err
}

// Actor returns the name of the actor whose handler failed
func (e *HandlerError) Actor() string {
	return e.actor
}
