package controllers

import (
	"net/http"

	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TagController struct {
	Catalog *services.CatalogService
	Log     logrus.FieldLogger
}

// @Summary Get all tags
// @Tags Tags
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/tags [get]
func (ctrl *TagController) GetTags(c *gin.Context) {
	tags, err := ctrl.Catalog.Tags(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Tags retrieved", Data: tags})
}
