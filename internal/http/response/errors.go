package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rematerial/rematerial-backend/internal/platform/apierr"
)

var errUnknown = errors.New("unknown error")

// RespondServiceError maps a service error to its HTTP status. Errors the
// service did not classify become 500 with fallbackCode.
func RespondServiceError(c *gin.Context, fallbackCode string, err error) {
	if err == nil {
		err = errUnknown
	}
	_ = c.Error(err)
	ae := apierr.From(err, fallbackCode)
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, ae.Code, ae)
}
