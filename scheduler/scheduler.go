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

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/tochemey/acta/actor"
	gerrors "github.com/tochemey/acta/errors"
	"github.com/tochemey/acta/log"
)

const (
	// DefaultName is the name the task scheduler is usually registered under
	DefaultName = "task_scheduler"

	// ScheduleCommand arms a task: data{at, actor, msg}
	ScheduleCommand = "schedule"
	// CancelCommand disarms the task scheduled at data{at}
	CancelCommand = "cancel"
	// ListCommand replies with the pending tasks keyed by time
	ListCommand = "list"

	firedCommand = "fired"

	atKey    = "at"
	actorKey = "actor"
	msgKey   = "msg"
	jobKey   = "job"
)

// Scheduler is a suspendable actor delivering messages at a point in time.
//
// Every scheduled task is a (time, target, message) triple kept in the actor
// state under its RFC3339 timestamp, so pending tasks survive Suspend and
// Revive: once the state is reloaded every pending task is armed again and
// tasks whose time has passed fire immediately. A fired or canceled task is
// removed from the state. Scheduling a second task at the same time replaces
// the first one.
//
// The scheduler must be created with actor.AsSuspendable.
type Scheduler struct {
	quartz      quartz.Scheduler
	started     *atomic.Bool
	stopTimeout time.Duration
	logger      log.Logger
	// armed maps a task timestamp to the key of its quartz job.
	// Only accessed from the consume loop.
	armed map[string]string
}

var _ actor.Actor = (*Scheduler)(nil)

// Option configures the Scheduler
type Option func(*Scheduler)

// WithStopTimeout bounds the wait for running jobs when the scheduler stops
func WithStopTimeout(timeout time.Duration) Option {
	return func(x *Scheduler) {
		x.stopTimeout = timeout
	}
}

// WithLogger sets the logger used outside of message handling
func WithLogger(logger log.Logger) Option {
	return func(x *Scheduler) {
		x.logger = logger
	}
}

// New creates a Scheduler
func New(opts ...Option) *Scheduler {
	x := &Scheduler{
		started:     atomic.NewBool(false),
		stopTimeout: 5 * time.Second,
		logger:      log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// NewScheduleCommand creates the message scheduling the delivery of message to target at the given time
func NewScheduleCommand(at time.Time, target string, message actor.Message) actor.Message {
	return actor.NewCommandWithData(ScheduleCommand, map[string]any{
		atKey:    at.UTC().Format(time.RFC3339Nano),
		actorKey: target,
		msgKey:   map[string]any(message),
	})
}

// NewCancelCommand creates the message canceling the task scheduled at the given time
func NewCancelCommand(at time.Time) actor.Message {
	return actor.NewCommandWithData(CancelCommand, map[string]any{
		atKey: at.UTC().Format(time.RFC3339Nano),
	})
}

// PreStart starts the quartz scheduler
func (x *Scheduler) PreStart(ctx context.Context) error {
	scheduler, err := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	if err != nil {
		return err
	}

	x.quartz = scheduler
	x.armed = make(map[string]string)
	x.quartz.Start(context.WithoutCancel(ctx))
	x.started.Store(x.quartz.IsStarted())
	return nil
}

// Receive handles the scheduling commands
func (x *Scheduler) Receive(ctx *actor.ReceiveContext) {
	switch ctx.Command() {
	case ScheduleCommand:
		x.handleSchedule(ctx)
	case CancelCommand:
		x.handleCancel(ctx)
	case ListCommand:
		x.handleList(ctx)
	case firedCommand:
		x.handleFired(ctx)
	case actor.LoadedState:
		x.rearm(ctx)
	}
}

// PostStop stops the quartz scheduler. Pending tasks stay in the state.
func (x *Scheduler) PostStop(ctx context.Context) error {
	if !x.started.Load() {
		return nil
	}

	if err := x.quartz.Clear(); err != nil {
		x.logger.Debugf("failed to clear scheduled tasks: %v", err)
	}
	x.quartz.Stop()
	x.started.Store(false)

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartz.Wait(ctx)
	return nil
}

// Pending returns the number of armed tasks
func (x *Scheduler) Pending() int {
	if !x.started.Load() {
		return 0
	}
	keys, err := x.quartz.GetJobKeys()
	if err != nil {
		return 0
	}
	return len(keys)
}

func (x *Scheduler) handleSchedule(ctx *actor.ReceiveContext) {
	task, err := parseTask(ctx.Message().DataMap())
	if err != nil {
		x.answer(ctx, "", err)
		return
	}

	if err := x.arm(ctx, task); err != nil {
		x.answer(ctx, task.key, err)
		return
	}

	ctx.SetState(map[string]any{task.key: task.entry()})
	ctx.Logger().Debugf("task scheduled at %s for %s", task.key, task.target)
	x.answer(ctx, task.key, nil)
}

func (x *Scheduler) handleCancel(ctx *actor.ReceiveContext) {
	data := ctx.Message().DataMap()
	at, err := parseTime(data[atKey])
	if err != nil {
		x.answer(ctx, "", err)
		return
	}

	key := at.UTC().Format(time.RFC3339Nano)
	x.disarm(ctx, key)
	x.forget(ctx, key)
	x.answer(ctx, key, nil)
}

func (x *Scheduler) handleList(ctx *actor.ReceiveContext) {
	tasks := make(map[string]any)
	for key, value := range ctx.State() {
		if entry, ok := value.(map[string]any); ok {
			tasks[key] = entry
		}
	}
	if err := ctx.Reply(tasks); err != nil {
		ctx.Err(err)
	}
}

// handleFired removes a task whose job ran, unless it was rescheduled meanwhile
func (x *Scheduler) handleFired(ctx *actor.ReceiveContext) {
	data := ctx.Message().DataMap()
	key, _ := data[atKey].(string)
	job, _ := data[jobKey].(string)
	if x.armed[key] != job {
		return
	}
	delete(x.armed, key)
	x.forget(ctx, key)
}

// rearm arms every pending task once the state has been reloaded
func (x *Scheduler) rearm(ctx *actor.ReceiveContext) {
	for key, value := range ctx.State() {
		entry, ok := value.(map[string]any)
		if !ok {
			continue
		}

		task, err := parseTask(entry)
		if err != nil {
			ctx.Logger().Warnf("dropping invalid task %s: %v", key, err)
			x.forget(ctx, key)
			continue
		}

		if err := x.arm(ctx, task); err != nil {
			ctx.Logger().Errorf("failed to re-arm task %s: %v", key, err)
		}
	}
}

func (x *Scheduler) arm(ctx *actor.ReceiveContext, task *task) error {
	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	x.disarm(ctx, task.key)

	world := ctx.World()
	self := ctx.Self().Name()
	key := uuid.NewString()
	message := actor.Message(task.message)

	fn := job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		err := world.TellFrom(ctx, task.target, message.Clone(), self)
		if err != nil {
			world.Logger().Warnf("scheduled delivery to %s failed: %v", task.target, err)
		}

		fired := actor.NewCommandWithData(firedCommand, map[string]any{atKey: task.key, jobKey: key})
		if ferr := world.TellFrom(ctx, self, fired, self); ferr != nil {
			world.Logger().Debugf("failed to report fired task %s: %v", task.key, ferr)
		}
		return err == nil, err
	})

	delay := max(time.Until(task.at), 0)
	detail := quartz.NewJobDetail(fn, quartz.NewJobKey(key))
	if err := x.quartz.ScheduleJob(detail, quartz.NewRunOnceTrigger(delay)); err != nil {
		return err
	}

	x.armed[task.key] = key
	return nil
}

func (x *Scheduler) disarm(ctx *actor.ReceiveContext, key string) {
	if job, ok := x.armed[key]; ok {
		if err := x.quartz.DeleteJob(quartz.NewJobKey(job)); err != nil {
			ctx.Logger().Debugf("failed to delete job of task %s: %v", key, err)
		}
		delete(x.armed, key)
	}
}

// forget removes a task from the state
func (x *Scheduler) forget(ctx *actor.ReceiveContext, key string) {
	state := ctx.State()
	if _, ok := state[key]; !ok {
		return
	}
	delete(state, key)
	ctx.ReplaceState(state)
}

// answer replies to asks and reports failures
func (x *Scheduler) answer(ctx *actor.ReceiveContext, key string, err error) {
	if err != nil {
		ctx.Err(err)
	}

	if ctx.Message().CorrelationID() == "" {
		return
	}

	reply := map[string]any{atKey: key}
	if err != nil {
		reply[actor.ErrorKey] = err.Error()
	}
	if rerr := ctx.Reply(reply); rerr != nil {
		ctx.Logger().Warnf("failed to answer %s: %v", ctx.Command(), rerr)
	}
}

type task struct {
	key     string
	at      time.Time
	target  string
	message map[string]any
}

func (t *task) entry() map[string]any {
	return map[string]any{
		atKey:    t.key,
		actorKey: t.target,
		msgKey:   t.message,
	}
}

func parseTask(data map[string]any) (*task, error) {
	if data == nil {
		return nil, gerrors.NewErrInvalidSchedule("missing data")
	}

	at, err := parseTime(data[atKey])
	if err != nil {
		return nil, err
	}

	target, _ := data[actorKey].(string)
	if target == "" {
		return nil, gerrors.NewErrInvalidSchedule("missing target actor")
	}

	var message map[string]any
	switch msg := data[msgKey].(type) {
	case map[string]any:
		message = msg
	case actor.Message:
		message = msg
	default:
		return nil, gerrors.NewErrInvalidSchedule(fmt.Sprintf("invalid message %T", data[msgKey]))
	}

	return &task{
		key:     at.UTC().Format(time.RFC3339Nano),
		at:      at,
		target:  target,
		message: message,
	}, nil
}

func parseTime(value any) (time.Time, error) {
	text, ok := value.(string)
	if !ok {
		return time.Time{}, gerrors.NewErrInvalidSchedule("missing time")
	}

	at, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return time.Time{}, gerrors.NewErrInvalidSchedule(err.Error())
	}
	return at, nil
}
