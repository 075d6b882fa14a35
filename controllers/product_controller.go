package controllers

import (
	"net/http"

	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductController struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionManager
	Log      logrus.FieldLogger
}

// @Summary Get all products
// @Description Get paginated list of catalog products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} models.PaginationResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, err := ctrl.Catalog.Products(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}

	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Products retrieved",
		Data:    page.Items,
		Meta:    page.Meta,
	})
}

// @Summary Refresh products
// @Description Refetch the product collection from the catalog
// @Tags Products
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/products/refresh [post]
func (ctrl *ProductController) RefreshProducts(c *gin.Context) {
	if err := ctrl.Catalog.RefreshProducts(c.Request.Context()); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Products refreshed"})
}

// @Summary Delete product
// @Description Delete a product from the catalog
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 502 {object} models.ErrorResponse
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := ctrl.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product deleted"})
}

// @Summary Edit product
// @Description Open an edit draft seeded from an existing product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 201 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/products/{id}/edit [post]
func (ctrl *ProductController) EditProduct(c *gin.Context) {
	session, err := ctrl.Sessions.EditProduct(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Draft opened", Data: session.View()})
}
