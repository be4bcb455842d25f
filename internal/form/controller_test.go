package form

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"authportal/internal/common"
	"authportal/internal/nav"
	"authportal/internal/nav/navtest"
	"authportal/internal/notification"
	"authportal/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type signUpValues struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

var signUpSchema = validation.NewSchema[signUpValues](validation.Messages{
	"username": {"required": "User Name Mandatory"},
	"email":    {"required": "Email mandatory", "email": "Enter Proper Email Id!"},
})

type harness struct {
	feed     *notification.Feed
	sched    *navtest.Scheduler
	recorder *navtest.Recorder
	delayed  *nav.Delayed
	calls    atomic.Int32
}

func newHarness() *harness {
	h := &harness{
		feed:     notification.NewFeed(10),
		sched:    navtest.New(),
		recorder: &navtest.Recorder{},
	}
	h.delayed = nav.NewDelayed(h.recorder, h.sched, 5*time.Second, zap.NewNop())
	return h
}

func (h *harness) controller(submit SubmitFunc[signUpValues, string], extra func(*Options[signUpValues, string])) *Controller[signUpValues, string] {
	opts := Options[signUpValues, string]{
		Name:      "signup",
		Validator: signUpSchema,
		Submit: func(ctx context.Context, v signUpValues) (string, error) {
			h.calls.Add(1)
			return submit(ctx, v)
		},
		SuccessMessage: "Successfully Registered!",
		Redirect:       nav.RouteSignIn,
		Delayed:        h.delayed,
		Notifier:       h.feed,
		Logger:         zap.NewNop(),
	}
	if extra != nil {
		extra(&opts)
	}
	return New(signUpValues{}, opts)
}

func okSubmit(context.Context, signUpValues) (string, error) { return "u1", nil }

func TestSubmit_InvalidNeverCallsRemote(t *testing.T) {
	h := newHarness()
	c := h.controller(okSubmit, nil)

	res := c.Submit(context.Background(), signUpValues{Email: "nope"})

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, validation.Errors{
		"username": "User Name Mandatory",
		"email":    "Enter Proper Email Id!",
	}, res.FieldErrors)
	assert.Equal(t, int32(0), h.calls.Load())
	assert.Equal(t, 0, h.feed.Len())
	assert.Equal(t, res.FieldErrors, c.State().Errors)
	assert.False(t, c.Submitting())
}

func TestSubmit_ClearsPreviousErrors(t *testing.T) {
	h := newHarness()
	c := h.controller(okSubmit, nil)

	c.Submit(context.Background(), signUpValues{})
	require.NotEmpty(t, c.State().Errors)

	res := c.Submit(context.Background(), signUpValues{Username: "ann", Email: "a@b.com"})
	assert.True(t, res.OK())
	assert.Nil(t, c.State().Errors)
}

func TestSubmit_SuccessNotifiesThenRedirectsOnce(t *testing.T) {
	h := newHarness()
	var order []string
	c := h.controller(okSubmit, func(o *Options[signUpValues, string]) {
		o.Effects = []Effect[signUpValues, string]{
			func(_ context.Context, v signUpValues, id string) {
				order = append(order, "effect:"+id)
				assert.Equal(t, 0, h.feed.Len(), "effects run before the success toast")
			},
		}
	})

	res := c.Submit(context.Background(), signUpValues{Username: "ann", Email: "a@b.com"})
	require.True(t, res.OK())
	assert.Equal(t, "u1", res.Value)
	assert.Equal(t, []string{"effect:u1"}, order)

	items := h.feed.Drain()
	require.Len(t, items, 1)
	assert.Equal(t, notification.SeveritySuccess, items[0].Severity)
	assert.Equal(t, "Successfully Registered!", items[0].Message)

	assert.Empty(t, h.recorder.Routes())
	h.sched.Advance(5 * time.Second)
	h.sched.Advance(5 * time.Second)
	assert.Equal(t, []nav.Route{nav.RouteSignIn}, h.recorder.Routes())
}

func TestSubmit_FailureShowsOneErrorAndClearsSubmitting(t *testing.T) {
	h := newHarness()
	c := h.controller(func(context.Context, signUpValues) (string, error) {
		return "", common.ErrNetwork
	}, nil)

	res := c.Submit(context.Background(), signUpValues{Username: "ann", Email: "a@b.com"})

	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, common.ErrNetwork)
	assert.Nil(t, res.FieldErrors)
	assert.False(t, c.Submitting())

	items := h.feed.Drain()
	require.Len(t, items, 1)
	assert.Equal(t, notification.SeverityError, items[0].Severity)
	assert.Equal(t, common.ErrNetwork.Error(), items[0].Message)

	h.sched.Advance(time.Minute)
	assert.Empty(t, h.recorder.Routes())
}

func TestSubmit_SingleFlight(t *testing.T) {
	h := newHarness()
	entered := make(chan struct{})
	release := make(chan struct{})
	c := h.controller(func(context.Context, signUpValues) (string, error) {
		close(entered)
		<-release
		return "u1", nil
	}, nil)

	done := make(chan Result[string])
	go func() { done <- c.Submit(context.Background(), signUpValues{Username: "ann", Email: "a@b.com"}) }()
	<-entered
	assert.True(t, c.Submitting())

	second := c.Submit(context.Background(), signUpValues{})
	assert.Equal(t, StatusBusy, second.Status)
	assert.ErrorIs(t, second.Err, common.ErrSubmissionInProgress)
	assert.Nil(t, c.State().Errors, "a rejected submission must not validate")

	close(release)
	first := <-done
	assert.True(t, first.OK())
	assert.Equal(t, int32(1), h.calls.Load())
	assert.False(t, c.Submitting())
}

func TestSubmit_GateRefusesBeforeAnything(t *testing.T) {
	h := newHarness()
	c := h.controller(okSubmit, func(o *Options[signUpValues, string]) {
		o.Gate = func() error { return common.ErrEditingDisabled }
	})
	initial := c.State()

	res := c.Submit(context.Background(), signUpValues{})

	assert.Equal(t, StatusDisabled, res.Status)
	assert.ErrorIs(t, res.Err, common.ErrEditingDisabled)
	assert.Equal(t, initial, c.State())
	assert.Equal(t, int32(0), h.calls.Load())
	assert.Equal(t, 0, h.feed.Len())
}

func TestClose_CancelsPendingRedirect(t *testing.T) {
	h := newHarness()
	c := h.controller(okSubmit, nil)

	require.True(t, c.Submit(context.Background(), signUpValues{Username: "ann", Email: "a@b.com"}).OK())
	c.Close()
	h.sched.Advance(time.Minute)

	assert.Empty(t, h.recorder.Routes())
	assert.Equal(t, 0, h.delayed.Pending())
}

func TestRespond_MapsStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		res  Result[string]
		code int
		body string
	}{
		{Result[string]{Status: StatusOK, Value: "u1"}, http.StatusOK, "Done"},
		{Result[string]{Status: StatusInvalid, FieldErrors: validation.Errors{"email": "Enter an email!"}}, http.StatusUnprocessableEntity, "Enter an email!"},
		{Result[string]{Status: StatusFailed, Err: errors.New("Request failed with status code 500")}, http.StatusBadGateway, "Request failed with status code 500"},
		{Result[string]{Status: StatusBusy, Err: common.ErrSubmissionInProgress}, http.StatusConflict, common.CodeSubmissionInProgress},
		{Result[string]{Status: StatusDisabled, Err: common.ErrEditingDisabled}, http.StatusForbidden, common.CodeEditingDisabled},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Respond(c, tc.res, "Done", tc.res.Value)
		assert.Equal(t, tc.code, w.Code)
		assert.Contains(t, w.Body.String(), tc.body)
	}
}
