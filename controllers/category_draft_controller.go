package controllers

import (
	"net/http"

	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryDraftController struct {
	Sessions *services.SessionManager
	Log      logrus.FieldLogger
}

func (ctrl *CategoryDraftController) session(c *gin.Context) (*services.CategorySession, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}
	s, err := ctrl.Sessions.Category(ownerID(c), id)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return nil, false
	}
	return s, true
}

// @Summary Open category draft
// @Tags Category Drafts
// @Produce json
// @Success 201 {object} models.Response
// @Router /api/drafts/categories [post]
func (ctrl *CategoryDraftController) OpenDraft(c *gin.Context) {
	s := ctrl.Sessions.OpenCategoryDraft(ownerID(c))
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Draft opened", Data: s.View()})
}

// @Summary Get category draft
// @Tags Category Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Router /api/drafts/categories/{sid} [get]
func (ctrl *CategoryDraftController) GetDraft(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Draft retrieved", Data: s.View()})
}

// @Summary Update category draft
// @Tags Category Drafts
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body models.UpdateCategoryDraftRequest true "Fields"
// @Success 200 {object} models.Response
// @Router /api/drafts/categories/{sid} [patch]
func (ctrl *CategoryDraftController) UpdateDraft(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	var req models.UpdateCategoryDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}
	view, err := s.UpdateFields(req)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Draft updated", Data: view})
}

// @Summary Close category draft
// @Tags Category Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Router /api/drafts/categories/{sid} [delete]
func (ctrl *CategoryDraftController) CloseDraft(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := ctrl.Sessions.CloseCategory(ownerID(c), id); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Draft closed"})
}

// @Summary Submit category draft
// @Tags Category Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Success 201 {object} models.Response
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/drafts/categories/{sid}/submit [post]
func (ctrl *CategoryDraftController) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	category, mode, err := ctrl.Sessions.SubmitCategory(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}

	if mode == services.ModeCreate {
		c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Category added successfully", Data: category})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Category updated successfully", Data: category})
}
