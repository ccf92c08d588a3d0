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

package actor

// Control-plane commands. They travel in the "command" field of a Message
// like any application command and are case-sensitive.
const (
	// InternalStop asks an actor to terminate and acknowledge with Stopped
	InternalStop = "INTERNAL_STOP"
	// Stopped acknowledges termination. The sender is the stopped actor.
	Stopped = "STOPPED"
	// InternalSuspend asks an actor to persist its state. The actor keeps running.
	InternalSuspend = "INTERNAL_SUSPEND"
	// InternalReloadState asks an actor to reload its persisted state
	InternalReloadState = "INTERNAL_RELOAD_STATE"
	// LoadedState delivers previously persisted state
	LoadedState = "LOADED_STATE"
	// LoadStateFailed tells an actor its state could not be loaded
	LoadStateFailed = "LOAD_STATE_FAILED"
	// SaveState carries the state to persist. The key derives from the sender.
	SaveState = "SAVE_STATE"
	// LoadState requests the state saved for the sender
	LoadState = "LOAD_STATE"
	// StateSaved acknowledges a SaveState carrying a correlation id
	StateSaved = "STATE_SAVED"
)

const (
	// WorldName is the reserved name of the supervisory actor of every World
	WorldName = "world"
	// DefaultPersistenceName is the name of the persistence collaborator
	DefaultPersistenceName = "persistence"
)

// isControl reports whether the command belongs to the suspend/resume protocol
func isControl(command string) bool {
	switch command {
	case InternalSuspend, InternalReloadState, LoadedState, LoadStateFailed:
		return true
	default:
		return false
	}
}
