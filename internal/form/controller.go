// Package form runs one screen's submissions: validate locally, call the
// remote side, then settle with notifications and an optional redirect.
package form

import (
	"context"
	"sync"

	"authportal/internal/common"
	"authportal/internal/nav"
	"authportal/internal/notification"
	"authportal/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Status tags the outcome of a submission.
type Status string

const (
	StatusOK       Status = "ok"
	StatusInvalid  Status = "invalid"
	StatusFailed   Status = "failed"
	StatusBusy     Status = "busy"
	StatusDisabled Status = "disabled"
)

// Result is the outcome of one Submit.
type Result[T any] struct {
	Status      Status            `json:"status"`
	Value       T                 `json:"value,omitempty"`
	FieldErrors validation.Errors `json:"fieldErrors,omitempty"`
	Err         error             `json:"-"`
}

// OK reports whether the submission succeeded.
func (r Result[T]) OK() bool { return r.Status == StatusOK }

// Validator checks form values before anything leaves the process.
type Validator[F any] interface {
	Validate(values F) validation.Errors
}

// SubmitFunc performs the remote part of a submission.
type SubmitFunc[F, T any] func(ctx context.Context, values F) (T, error)

// Effect runs after a successful remote call, before the success notification.
type Effect[F, T any] func(ctx context.Context, values F, value T)

// Gate decides whether submitting is allowed at all. A non-nil error refuses.
type Gate func() error

// Options configures a Controller.
type Options[F, T any] struct {
	Name           string
	Validator      Validator[F]
	Submit         SubmitFunc[F, T]
	Gate           Gate
	Effects        []Effect[F, T]
	SuccessMessage string
	// Redirect, when set, is navigated to once after Delayed's delay.
	Redirect nav.Route
	Delayed  *nav.Delayed
	Notifier notification.Notifier
	Logger   *zap.Logger
}

// Snapshot is the state a screen renders.
type Snapshot[F any] struct {
	Values     F                 `json:"values"`
	Errors     validation.Errors `json:"errors"`
	Submitting bool              `json:"submitting"`
}

// Controller owns one form's state and allows a single submission at a time.
type Controller[F, T any] struct {
	opts   Options[F, T]
	logger *zap.Logger
	flight *semaphore.Weighted

	mu         sync.RWMutex
	values     F
	errors     validation.Errors
	submitting bool
	redirects  []func()
	closed     bool
}

func New[F, T any](initial F, opts Options[F, T]) *Controller[F, T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notification.NotifierFunc(func(notification.Notification) {})
	}
	return &Controller[F, T]{
		opts:   opts,
		logger: logger.Named("form").With(zap.String("form", opts.Name)),
		flight: semaphore.NewWeighted(1),
		values: initial,
	}
}

// Submit runs one attempt with values.
func (c *Controller[F, T]) Submit(ctx context.Context, values F) Result[T] {
	if c.opts.Gate != nil {
		if err := c.opts.Gate(); err != nil {
			c.logger.Debug("Submission refused by gate", zap.Error(err))
			return Result[T]{Status: StatusDisabled, Err: err}
		}
	}

	if !c.flight.TryAcquire(1) {
		c.logger.Debug("Submission ignored, another is in flight")
		return Result[T]{Status: StatusBusy, Err: common.ErrSubmissionInProgress}
	}
	defer c.flight.Release(1)

	c.mu.Lock()
	c.values = values
	c.errors = nil
	c.mu.Unlock()

	if c.opts.Validator != nil {
		if errs := c.opts.Validator.Validate(values); len(errs) > 0 {
			c.mu.Lock()
			c.errors = errs
			c.mu.Unlock()
			return Result[T]{Status: StatusInvalid, FieldErrors: errs, Err: common.NewValidationAPIError(errs)}
		}
	}

	value, err := c.call(ctx, values)
	if err != nil {
		c.logger.Warn("Submission failed", zap.Error(err))
		notification.Error(c.opts.Notifier, err.Error())
		return Result[T]{Status: StatusFailed, Err: err}
	}

	for _, effect := range c.opts.Effects {
		effect(ctx, values, value)
	}
	if c.opts.SuccessMessage != "" {
		notification.Success(c.opts.Notifier, c.opts.SuccessMessage)
	}
	if c.opts.Redirect != "" && c.opts.Delayed != nil {
		c.scheduleRedirect()
	}
	c.logger.Info("Submission succeeded")
	return Result[T]{Status: StatusOK, Value: value}
}

// call brackets the remote call with the submitting flag.
func (c *Controller[F, T]) call(ctx context.Context, values F) (T, error) {
	c.setSubmitting(true)
	defer c.setSubmitting(false)
	return c.opts.Submit(ctx, values)
}

func (c *Controller[F, T]) setSubmitting(v bool) {
	c.mu.Lock()
	c.submitting = v
	c.mu.Unlock()
}

func (c *Controller[F, T]) scheduleRedirect() {
	cancel := c.opts.Delayed.Schedule(c.opts.Redirect)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		cancel()
		return
	}
	c.redirects = append(c.redirects, cancel)
}

// State returns what the screen should render.
func (c *Controller[F, T]) State() Snapshot[F] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var errs validation.Errors
	if len(c.errors) > 0 {
		errs = make(validation.Errors, len(c.errors))
		for k, v := range c.errors {
			errs[k] = v
		}
	}
	return Snapshot[F]{Values: c.values, Errors: errs, Submitting: c.submitting}
}

// Submitting reports whether a remote call is in progress.
func (c *Controller[F, T]) Submitting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.submitting
}

// Reset replaces the values and clears field errors. It does nothing while submitting.
func (c *Controller[F, T]) Reset(values F) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return
	}
	c.values = values
	c.errors = nil
}

// Close cancels redirects that have not fired yet.
func (c *Controller[F, T]) Close() {
	c.mu.Lock()
	redirects := c.redirects
	c.redirects = nil
	c.closed = true
	c.mu.Unlock()

	for _, cancel := range redirects {
		cancel()
	}
}
