package controllers

import (
	"net/http"

	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryController struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionManager
	Log      logrus.FieldLogger
}

// @Summary Get all categories
// @Description Get paginated list of categories. all=true returns the whole collection
// @Tags Categories
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param all query bool false "Return every category"
// @Success 200 {object} models.PaginationResponse
// @Router /api/categories [get]
func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	if c.Query("all") == "true" {
		categories, err := ctrl.Catalog.AllCategories(c.Request.Context())
		if err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
		c.JSON(http.StatusOK, models.Response{Success: true, Message: "Categories retrieved", Data: categories})
		return
	}

	page, err := ctrl.Catalog.Categories(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Categories retrieved",
		Data:    page.Items,
		Meta:    page.Meta,
	})
}

// @Summary Refresh categories
// @Tags Categories
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/categories/refresh [post]
func (ctrl *CategoryController) RefreshCategories(c *gin.Context) {
	if err := ctrl.Catalog.RefreshCategories(c.Request.Context()); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Categories refreshed"})
}

// @Summary Delete category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.Response
// @Router /api/categories/{id} [delete]
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	if err := ctrl.Catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Category deleted"})
}

// @Summary Edit category
// @Description Open an edit draft seeded from an existing category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 201 {object} models.Response
// @Router /api/categories/{id}/edit [post]
func (ctrl *CategoryController) EditCategory(c *gin.Context) {
	session, err := ctrl.Sessions.EditCategory(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Draft opened", Data: session.View()})
}
