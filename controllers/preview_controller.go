package controllers

import (
	"net/http"

	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PreviewController struct {
	Sessions *services.SessionManager
	Log      logrus.FieldLogger
}

// @Summary Staged file preview
// @Description Serve the bytes of a staged file to the user who staged it
// @Tags Product Drafts
// @Produce octet-stream
// @Param id path string true "Preview ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /previews/{id} [get]
func (ctrl *PreviewController) ServePreview(c *gin.Context) {
	rc, contentType, err := ctrl.Sessions.Preview(ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "private, no-store")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
