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

import (
	"sync"
	"sync/atomic"

	gerrors "github.com/tochemey/acta/errors"
)

type mpscNode struct {
	next atomic.Pointer[mpscNode]
	data *ReceiveContext
}

var mpscNodePool = sync.Pool{New: func() any { return new(mpscNode) }}

// UnboundedMailbox is the default lock-free mailbox.
//
// Many goroutines may call Enqueue concurrently but exactly one goroutine
// calls Dequeue. Ordering is FIFO across all producers.
// IsEmpty is O(1) while Len walks the queue and is meant for diagnostics.
type UnboundedMailbox struct {
	head     atomic.Pointer[mpscNode] // consumer only
	_pad1    [64]byte
	tail     atomic.Pointer[mpscNode] // producers only
	_pad2    [64]byte
	disposed atomic.Bool
}

var _ Mailbox = (*UnboundedMailbox)(nil)

// NewUnboundedMailbox creates an UnboundedMailbox. The queue starts with a
// dummy node so producers append by swapping the tail.
func NewUnboundedMailbox() *UnboundedMailbox {
	dummy := mpscNodePool.Get().(*mpscNode)
	dummy.next.Store(nil)
	dummy.data = nil
	m := &UnboundedMailbox{}
	m.head.Store(dummy)
	m.tail.Store(dummy)
	return m
}

// Enqueue places the given value in the mailbox. It fails only once the mailbox is disposed.
func (m *UnboundedMailbox) Enqueue(value *ReceiveContext) error {
	if m.disposed.Load() {
		return gerrors.ErrMailboxDisposed
	}

	n := mpscNodePool.Get().(*mpscNode)
	n.data = value

	prev := m.tail.Swap(n)
	prev.next.Store(n)
	return nil
}

// Dequeue removes and returns the value at the head of the mailbox
func (m *UnboundedMailbox) Dequeue() *ReceiveContext {
	if m.disposed.Load() {
		return nil
	}

	head := m.head.Load()
	next := head.next.Load()
	if next == nil {
		return nil
	}

	m.head.Store(next)
	value := next.data
	next.data = nil

	head.next.Store(nil)
	mpscNodePool.Put(head)
	return value
}

// Len returns a best-effort snapshot of the number of queued messages
func (m *UnboundedMailbox) Len() int64 {
	h := m.head.Load()
	n := h.next.Load()
	var count int64
	for n != nil {
		count++
		n = n.next.Load()
	}
	return count
}

// IsEmpty returns true when the mailbox is empty
func (m *UnboundedMailbox) IsEmpty() bool {
	if m.disposed.Load() {
		return true
	}
	head := m.head.Load()
	return head.next.Load() == nil
}

// Dispose marks the mailbox as disposed. Pending messages are dropped.
func (m *UnboundedMailbox) Dispose() {
	m.disposed.Store(true)
}
