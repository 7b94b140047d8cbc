package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/scribe/llm"
	"github.com/skillsenselab/scribe/transcription"
)

// Health returns a handler that reports service health including the
// reachability of the speech engine and the language model backend. The
// language model is an enhancement, so its absence only degrades the status.
func Health(serviceName string, engine transcription.Provider, model llm.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		engineUp := engine.IsAvailable(ctx)
		modelUp := model.IsAvailable(ctx)

		status := "healthy"
		httpStatus := http.StatusOK
		switch {
		case !engineUp:
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		case !modelUp:
			status = "degraded"
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"components": gin.H{
				engine.Name(): availability(engineUp),
				model.Name():  availability(modelUp),
			},
		})
	}
}

func availability(up bool) string {
	if up {
		return "available"
	}
	return "unavailable"
}
