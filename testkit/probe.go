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

package testkit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/acta/actor"
)

const (
	MessagesQueueMax int           = 1000
	DefaultTimeout   time.Duration = 3 * time.Second
)

// Probe defines the probe interface that helps perform some assertions
// when implementing unit tests with actors
type Probe interface {
	// ExpectMessage asserts that the next message received by the probe is the expected one
	ExpectMessage(message actor.Message) actor.Message
	// ExpectMessageWithin asserts that the next message is the expected one within a time duration
	ExpectMessageWithin(duration time.Duration, message actor.Message) actor.Message
	// ExpectMessages asserts that the next messages are the expected ones, in order
	ExpectMessages(messages ...actor.Message)
	// ExpectNoMessage asserts that no message is expected
	ExpectNoMessage()
	// ExpectAnyMessage asserts that any message is expected
	ExpectAnyMessage() actor.Message
	// ExpectAnyMessageWithin asserts that any message within a time duration
	ExpectAnyMessageWithin(duration time.Duration) actor.Message
	// ExpectCommand asserts that the next message carries the given command
	ExpectCommand(command string) actor.Message
	// Send tells a message to the actor to be tested on behalf of the probe.
	// Replies of the tested actor come back to the probe.
	Send(actorName string, message actor.Message)
	// SendSync asks the actor to be tested and queues its reply on the probe.
	SendSync(actorName string, message actor.Message, timeout time.Duration)
	// Sender returns the sender of last received message.
	Sender() string
	// Name returns the name of the probe actor
	Name() string
	// Stop stops the test probe
	Stop()
}

type envelope struct {
	sender  string
	payload actor.Message
}

type probeActor struct {
	messageQueue chan envelope
}

// ensure that probeActor implements the Actor interface
var _ actor.Actor = &probeActor{}

func (x *probeActor) PreStart(context.Context) error {
	return nil
}

// Receive pushes every message to the queue
func (x *probeActor) Receive(ctx *actor.ReceiveContext) {
	x.messageQueue <- envelope{
		sender:  ctx.Sender(),
		payload: ctx.Message(),
	}
}

func (x *probeActor) PostStop(context.Context) error {
	return nil
}

// probe defines the test probe implementation
type probe struct {
	pt *testing.T

	testCtx        context.Context
	world          *actor.World
	name           string
	lastMessage    actor.Message
	lastSender     string
	messageQueue   chan envelope
	defaultTimeout time.Duration
}

// ensure that probe implements Probe
var _ Probe = (*probe)(nil)

func newProbe(ctx context.Context, world *actor.World, t *testing.T) (*probe, error) {
	msgQueue := make(chan envelope, MessagesQueueMax)
	name := "probe-" + uuid.NewString()
	if _, err := world.Create(ctx, name, &probeActor{messageQueue: msgQueue}); err != nil {
		return nil, err
	}

	return &probe{
		pt:             t,
		testCtx:        ctx,
		world:          world,
		name:           name,
		messageQueue:   msgQueue,
		defaultTimeout: DefaultTimeout,
	}, nil
}

// ExpectMessage assert message expectation
func (x *probe) ExpectMessage(message actor.Message) actor.Message {
	return x.expectMessage(x.defaultTimeout, message)
}

// ExpectMessageWithin expects message within a time duration
func (x *probe) ExpectMessageWithin(duration time.Duration, message actor.Message) actor.Message {
	return x.expectMessage(duration, message)
}

// ExpectMessages expects the given messages in order
func (x *probe) ExpectMessages(messages ...actor.Message) {
	for _, message := range messages {
		x.expectMessage(x.defaultTimeout, message)
	}
}

// ExpectNoMessage expects no message
func (x *probe) ExpectNoMessage() {
	received := x.receiveOne(x.defaultTimeout)
	require.Nil(x.pt, received, fmt.Sprintf("received unexpected message %v", received))
}

// ExpectAnyMessage expects any message
func (x *probe) ExpectAnyMessage() actor.Message {
	return x.expectAnyMessage(x.defaultTimeout)
}

// ExpectAnyMessageWithin expects any message within a time duration
func (x *probe) ExpectAnyMessageWithin(duration time.Duration) actor.Message {
	return x.expectAnyMessage(duration)
}

// ExpectCommand expects a message carrying the given command
func (x *probe) ExpectCommand(command string) actor.Message {
	received := x.expectAnyMessage(x.defaultTimeout)
	require.Equal(x.pt, command, received.Command(), fmt.Sprintf("expected command %s, found %v", command, received))
	return received
}

// Send tells the message to the named actor with the probe as sender
func (x *probe) Send(actorName string, message actor.Message) {
	require.NoError(x.pt, x.world.TellFrom(x.testCtx, actorName, message, x.name))
}

// SendSync asks the named actor and queues its reply
func (x *probe) SendSync(actorName string, message actor.Message, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(x.testCtx, timeout)
	defer cancel()

	received, err := x.world.Ask(ctx, actorName, message)
	require.NoError(x.pt, err)
	x.messageQueue <- envelope{
		sender:  actorName,
		payload: received,
	}
}

// Sender returns the last sender
func (x *probe) Sender() string {
	return x.lastSender
}

// Name returns the name of the probe actor
func (x *probe) Name() string {
	return x.name
}

// Stop stops the test probe
func (x *probe) Stop() {
	require.NoError(x.pt, x.world.Stop(x.testCtx, x.name))
}

// receiveOne receives one message within a maximum time duration
func (x *probe) receiveOne(max time.Duration) actor.Message {
	timer := time.NewTimer(max)
	defer timer.Stop()

	select {
	case m, ok := <-x.messageQueue:
		if !ok {
			return nil
		}
		if m.payload != nil {
			x.lastMessage = m.payload
			x.lastSender = m.sender
		}
		return m.payload
	case <-timer.C:
		return nil
	}
}

func (x *probe) expectMessage(max time.Duration, message actor.Message) actor.Message {
	received := x.receiveOne(max)
	require.NotNil(x.pt, received, fmt.Sprintf("timeout (%v) during expectMessage while waiting for %v", max, message))
	require.Equal(x.pt, message, received, fmt.Sprintf("expected %v, found %v", message, received))
	return received
}

func (x *probe) expectAnyMessage(max time.Duration) actor.Message {
	received := x.receiveOne(max)
	require.NotNil(x.pt, received, fmt.Sprintf("timeout (%v) during expectAnyMessage while waiting", max))
	return received
}
