// Package endpoint contains the HTTP handlers exposed by the service.
package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/pipeline"
	"github.com/skillsenselab/scribe/server"
	"github.com/skillsenselab/scribe/transcription"
)

// Transcribe returns the handler for POST /transcribe. It expects a multipart
// form with a "file" part and an optional "task" field, runs the transcription
// pipeline, and writes the result document.
func Transcribe(svc *pipeline.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			server.RespondWithError(c, errors.Validation("A media file is required in the 'file' form field."))
			return
		}

		task, err := transcription.ParseTask(c.PostForm("task"))
		if err != nil {
			server.RespondWithError(c, errors.Validation(err.Error()))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			server.RespondWithError(c, errors.Staging(err))
			return
		}
		defer file.Close()

		upload := pipeline.Upload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        file,
		}

		result, err := svc.Transcribe(c.Request.Context(), upload, task)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
