package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/scribe/errors"
)

// RespondWithError writes the wire representation of an error. Client errors
// use a {"detail": ...} body, server errors an {"error": ...} body, and
// authentication failures a plain-text body with a Basic challenge.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	switch {
	case appErr.HTTPStatus == http.StatusUnauthorized:
		c.Header("WWW-Authenticate", "Basic")
		c.String(http.StatusUnauthorized, appErr.Message)
	case appErr.HTTPStatus >= http.StatusInternalServerError:
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
	default:
		c.JSON(appErr.HTTPStatus, gin.H{"detail": appErr.Message})
	}
}
