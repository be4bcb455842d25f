package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_CopiesDoNotMutateSentinels(t *testing.T) {
	detailed := ErrBadRequest.WithDetails("field x")
	assert.Nil(t, ErrBadRequest.Details)
	assert.Equal(t, "field x", detailed.Details)

	msg := ErrRemote.WithMessage("Email already registered")
	assert.Equal(t, "The server rejected the request.", ErrRemote.Message)
	assert.Equal(t, "Email already registered", msg.Error())
}

func TestAPIError_IsMatchesByCode(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("register: %w", ErrNetwork.Wrap(cause))

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrRemote))
	assert.True(t, IsCode(err, CodeNetwork))
}

func TestNewRemoteError(t *testing.T) {
	err := NewRemoteError(http.StatusConflict, "")
	assert.Equal(t, CodeRemote, err.Code)
	assert.Equal(t, "Request failed with status 409 Conflict", err.Error())
	assert.True(t, errors.Is(err, ErrRemote))

	err = NewRemoteError(http.StatusBadRequest, "Email already exists")
	assert.Equal(t, "Email already exists", err.Error())
}
