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

import "maps"

// Well-known message keys
const (
	CommandKey       = "command"
	CorrelationIDKey = "correlation_id"
	ReplyToKey       = "reply_to"
	DataKey          = "data"
	ErrorKey         = "error"
)

// Message is an open-ended structured value. A "command" entry drives
// routing, "correlation_id" and "reply_to" link an ask to its reply.
// Everything else is application payload.
type Message map[string]any

// NewCommand creates a Message carrying the given command
func NewCommand(command string) Message {
	return Message{CommandKey: command}
}

// NewCommandWithData creates a Message carrying the given command and data
func NewCommandWithData(command string, data any) Message {
	return Message{CommandKey: command, DataKey: data}
}

// NewReply creates the reply to the ask identified by correlationID
func NewReply(correlationID string, data any) Message {
	return Message{ReplyToKey: correlationID, DataKey: data}
}

// Command returns the command of the message or the empty string
func (m Message) Command() string {
	return m.stringAt(CommandKey)
}

// CorrelationID returns the correlation id set by an ask
func (m Message) CorrelationID() string {
	return m.stringAt(CorrelationIDKey)
}

// ReplyTo returns the correlation id this message replies to
func (m Message) ReplyTo() string {
	return m.stringAt(ReplyToKey)
}

// Error returns the error description carried by the message
func (m Message) Error() string {
	return m.stringAt(ErrorKey)
}

// Data returns the raw data entry
func (m Message) Data() any {
	return m[DataKey]
}

// DataMap returns the data entry as a map. It returns nil when the data is not a map.
func (m Message) DataMap() map[string]any {
	switch data := m[DataKey].(type) {
	case map[string]any:
		return data
	case Message:
		return data
	default:
		return nil
	}
}

// Clone returns a shallow copy of the message
func (m Message) Clone() Message {
	if m == nil {
		return Message{}
	}
	return maps.Clone(m)
}

// With returns a shallow copy of the message with the key set
func (m Message) With(key string, value any) Message {
	clone := m.Clone()
	clone[key] = value
	return clone
}

func (m Message) stringAt(key string) string {
	if value, ok := m[key].(string); ok {
		return value
	}
	return ""
}
