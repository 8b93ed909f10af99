package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localkart/homeservices-api/internal/apperror"
	"github.com/localkart/homeservices-api/internal/middleware"
	"github.com/localkart/homeservices-api/internal/services"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Token   string      `json:"token,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondList[T any](c *gin.Context, items []T) {
	n := len(items)
	c.JSON(http.StatusOK, Envelope{Success: true, Count: &n, Data: items})
}

func respondBadRequest(c *gin.Context, msg string, details interface{}) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: msg, Errors: details})
}

// respondError translates service errors into responses. Anything that is
// not a known AppError is logged and reported as a generic failure.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, category, msg := apperror.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Log.ErrorContext(c.Request.Context(), "request failed",
			"err", err,
			"category", category,
			"route", c.FullPath(),
			"request_id", c.GetString(middleware.CtxRequestID),
		)
	}

	body := Envelope{Success: false, Message: msg}
	var verr *apperror.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body.Errors = verr.Fields
	}
	c.JSON(status, body)
}

// principal is only called behind RequireAuth, so a missing identity means
// the route was wired wrong.
func (h *Handler) principal(c *gin.Context) (p services.Principal, ok bool) {
	p, ok = middleware.PrincipalFromContext(c)
	if !ok {
		h.respondError(c, apperror.NewUnauthenticatedError("Not authorized to access this route", nil))
	}
	return p, ok
}
