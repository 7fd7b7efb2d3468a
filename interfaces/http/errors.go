package http

import (
	"errors"
	"net/http"
	"strconv"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/dto"

	"github.com/gin-gonic/gin"
)

var errMissingUser = errors.New("missing user_id")

func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.ValidationError:
		return http.StatusBadRequest
	case apperror.NotAuthorized, apperror.ReauthenticationRequired, apperror.AuthenticationError:
		return http.StatusUnauthorized
	case apperror.PermissionError:
		return http.StatusForbidden
	case apperror.NotFound:
		return http.StatusNotFound
	case apperror.Duplicate:
		return http.StatusConflict
	case apperror.PlatformError, apperror.TransientTokenError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the status for err's kind. Internal failures do not leak their cause.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	c.JSON(status, dto.Res{
		ResponseCode:    strconv.Itoa(status),
		ResponseMessage: msg,
		Data:            gin.H{"error": string(apperror.KindOf(err))},
	})
}

func writeOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.Res{ResponseCode: strconv.Itoa(status), ResponseMessage: "Success", Data: data})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: ErrorUnmarshal + " " + err.Error()})
}

func currentUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetString("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: errMissingUser.Error()})
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "invalid " + name})
		return 0, false
	}
	return id, true
}
