package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"catalog-admin/clients"
	"catalog-admin/middleware"
	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func ownerID(c *gin.Context) string {
	user, _ := middleware.CurrentUser(c)
	return user.ID
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Draft not found"})
		return uuid.Nil, false
	}
	return id, true
}

func pageParam(c *gin.Context) int {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return page
}

// respondError flattens a service or remote error into the error envelope.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var (
		verr     *models.ValidationError
		mediaErr *services.MediaError
		subErr   *services.SubmitError
		apiErr   *clients.APIError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Success: false, Message: verr.Message, Details: verr.Fields})
	case errors.As(err, &mediaErr):
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrSlotLocked) || errors.Is(err, services.ErrUploadInFlight) ||
			errors.Is(err, services.ErrUploadDiscarded) {
			status = http.StatusConflict
		}
		resp := models.ErrorResponse{Success: false, Message: mediaErr.Message}
		if len(mediaErr.Rejections) > 0 {
			resp.Details = mediaErr.Rejections
		}
		c.JSON(status, resp)
	case errors.Is(err, services.ErrInvalidLogin):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Incorrect email or password"})
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrPreviewNotFound),
		errors.Is(err, services.ErrStagedNotFound), errors.Is(err, services.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: capitalize(err.Error())})
	case errors.Is(err, services.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "A submit is already in progress"})
	case errors.Is(err, services.ErrTagRejected), errors.Is(err, services.ErrUnknownSlot):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: capitalize(err.Error())})
	case clients.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Session expired, please log in again"})
	case errors.As(err, &subErr):
		log.WithError(subErr.Err).Error(subErr.Message)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Success: false, Message: subErr.Message, Error: subErr.Err.Error()})
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Not found", Error: apiErr.Message})
	default:
		log.WithError(err).Error("catalog request failed")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Success: false, Message: "Failed to reach the catalog", Error: err.Error()})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// stageInputs opens every file of the "files" form field. The returned
// closer must be called once staging is done.
func stageInputs(c *gin.Context) ([]services.StageInput, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, err
	}

	headers := form.File["files"]
	inputs := make([]services.StageInput, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		inputs = append(inputs, services.StageInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return inputs, closeAll, nil
}
