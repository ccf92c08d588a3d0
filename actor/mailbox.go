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

// Mailbox is the message queue owned by an actor.
//
// Concurrency and ordering
//   - Enqueue is called concurrently by any number of producers.
//   - Dequeue is called by the single consume loop of the owning actor.
//   - Messages are dequeued in the order they were accepted.
//
// Non-blocking behavior
//   - Enqueue never blocks. A bounded mailbox returns ErrMailboxFull when at
//     capacity. Every mailbox returns ErrMailboxDisposed once disposed.
//   - Dequeue returns nil when the mailbox is empty.
//
// Resource management
//   - Dispose releases the resources held by the mailbox. Queued messages
//     are dropped.
type Mailbox interface {
	// Enqueue pushes a message into the mailbox
	Enqueue(msg *ReceiveContext) error
	// Dequeue fetches the next message or nil when the mailbox is empty
	Dequeue() (msg *ReceiveContext)
	// IsEmpty reports whether the mailbox currently has no messages
	IsEmpty() bool
	// Len returns a snapshot of the number of queued messages
	Len() int64
	// Dispose releases the mailbox. The mailbox rejects messages afterwards.
	Dispose()
}

// MailboxFactory creates a fresh mailbox for every actor
type MailboxFactory func() Mailbox
