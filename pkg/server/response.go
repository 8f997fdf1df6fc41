package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
	"github.com/kdeps/audiodepot/pkg/messages"
)

// ErrorResponse defines the structure of each error.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// APIResponse defines the overall response structure for JSON clients.
type APIResponse struct {
	Success  bool            `json:"success"`
	Response ResponseData    `json:"response"`
	Meta     ResponseMeta    `json:"meta"`
	Errors   []ErrorResponse `json:"errors,omitempty"`
}

// ResponseData encapsulates the data section of the response.
type ResponseData struct {
	Data any `json:"data"`
}

// ResponseMeta contains metadata related to the API response.
type ResponseMeta struct {
	RequestID string `json:"requestID"`
}

// wantsJSON reports whether the client asked for a JSON body.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// respondError writes err as a short text body, or as an APIResponse when
// the client accepts JSON.
func respondError(c *gin.Context, err error) {
	status := audioErrors.StatusCode(err)
	message := messages.RespInternalError
	code := ""
	if ae, ok := audioErrors.AsAudioError(err); ok {
		message = ae.Message
		code = string(ae.Code)
	}

	logger := requestLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}

	if wantsJSON(c) {
		c.AbortWithStatusJSON(status, APIResponse{
			Success: false,
			Meta:    ResponseMeta{RequestID: requestID(c)},
			Errors:  []ErrorResponse{{Code: status, Type: code, Message: message}},
		})
		return
	}
	c.Abort()
	c.String(status, message+"\n")
}
