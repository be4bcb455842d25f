package form

import (
	"net/http"

	"authportal/internal/common"

	"github.com/gin-gonic/gin"
)

// HTTPStatus maps a submission status onto the host API.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusOK:
		return http.StatusOK
	case StatusInvalid:
		return http.StatusUnprocessableEntity
	case StatusBusy:
		return http.StatusConflict
	case StatusDisabled:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

// Respond writes r as a host API response. data is sent on success.
func Respond[T any](c *gin.Context, r Result[T], message string, data interface{}) {
	if r.Status == StatusOK {
		common.RespondOK(c, message, data)
		return
	}

	apiErr, ok := common.IsAPIError(r.Err)
	switch {
	case r.Status == StatusInvalid:
		apiErr = common.NewValidationAPIError(r.FieldErrors)
	case !ok:
		apiErr = common.ErrRemote.WithMessage(errorText(r.Err)).Wrap(r.Err)
	}
	out := *apiErr
	out.StatusCode = r.Status.HTTPStatus()
	c.AbortWithStatusJSON(out.StatusCode, &out)
}

func errorText(err error) string {
	if err == nil {
		return "Request failed."
	}
	return err.Error()
}
