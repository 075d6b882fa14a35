package controllers

import (
	"net/http"
	"strconv"

	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductDraftController struct {
	Sessions *services.SessionManager
	Log      logrus.FieldLogger
}

func (ctrl *ProductDraftController) session(c *gin.Context) (*services.ProductSession, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}
	s, err := ctrl.Sessions.Product(ownerID(c), id)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return nil, false
	}
	return s, true
}

func (ctrl *ProductDraftController) reply(c *gin.Context, message string, view services.ProductSessionView, err error) {
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: message, Data: view})
}

// @Summary Open product draft
// @Description Start an empty add-product draft
// @Tags Product Drafts
// @Produce json
// @Success 201 {object} models.Response
// @Router /api/drafts/products [post]
func (ctrl *ProductDraftController) OpenDraft(c *gin.Context) {
	s := ctrl.Sessions.OpenProductDraft(c.Request.Context(), ownerID(c))
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Draft opened", Data: s.View()})
}

// @Summary List saved drafts
// @Tags Product Drafts
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/drafts [get]
func (ctrl *ProductDraftController) ListDrafts(c *gin.Context) {
	records, err := ctrl.Sessions.Drafts(c.Request.Context(), ownerID(c))
	if err != nil {
		ctrl.Log.WithError(err).Error("failed to list drafts")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to list drafts"})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Drafts retrieved", Data: records})
}

// @Summary Get product draft
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid} [get]
func (ctrl *ProductDraftController) GetDraft(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Draft retrieved", Data: s.View()})
}

// @Summary Resume product draft
// @Description Reopen a saved draft. Staged files are not restored
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/resume [post]
func (ctrl *ProductDraftController) ResumeDraft(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	s, err := ctrl.Sessions.ResumeProductDraft(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Draft resumed", Data: s.View()})
}

// @Summary Update draft fields
// @Tags Product Drafts
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body models.UpdateDraftRequest true "Fields"
// @Success 200 {object} models.Response
// @Router /api/drafts/products/{sid} [patch]
func (ctrl *ProductDraftController) UpdateDraft(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	var req models.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}
	view, err := s.UpdateFields(req)
	ctrl.reply(c, "Draft updated", view, err)
}

// @Summary Close product draft
// @Description Discard the draft and release staged files
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Router /api/drafts/products/{sid} [delete]
func (ctrl *ProductDraftController) CloseDraft(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := ctrl.Sessions.CloseProduct(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Draft closed"})
}

// @Summary Suggest tags
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Param q query string false "Typed input"
// @Success 200 {object} models.Response
// @Router /api/drafts/products/{sid}/tags/suggest [get]
func (ctrl *ProductDraftController) SuggestTags(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Suggestions retrieved", Data: s.SuggestTags(c.Query("q"))})
}

// @Summary Add tag
// @Description Confirm typed input or a picked suggestion
// @Tags Product Drafts
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body models.AddTagRequest true "Tag"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/tags [post]
func (ctrl *ProductDraftController) AddTag(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	var req models.AddTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	var (
		view services.ProductSessionView
		err  error
	)
	if req.Suggestion != nil {
		view, err = s.SelectTag(*req.Suggestion)
	} else {
		view, err = s.AddTag(req.Value)
	}
	ctrl.reply(c, "Tag added", view, err)
}

// @Summary Remove tag
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Param value path string true "Tag value"
// @Success 200 {object} models.Response
// @Router /api/drafts/products/{sid}/tags/{value} [delete]
func (ctrl *ProductDraftController) RemoveTag(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	view, err := s.RemoveTag(c.Param("value"))
	ctrl.reply(c, "Tag removed", view, err)
}

// @Summary Add variant
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Router /api/drafts/products/{sid}/variants [post]
func (ctrl *ProductDraftController) AddVariant(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	view, err := s.AddVariant()
	ctrl.reply(c, "Variant added", view, err)
}

// @Summary Update variant
// @Tags Product Drafts
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param index path int true "Variant position"
// @Param request body models.VariantRequest true "Variant"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/variants/{index} [patch]
func (ctrl *ProductDraftController) UpdateVariant(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid variant index"})
		return
	}
	var req models.VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}
	view, err := s.UpdateVariant(index, req)
	ctrl.reply(c, "Variant updated", view, err)
}

// @Summary Remove variant
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Param index path int true "Variant position"
// @Success 200 {object} models.Response
// @Router /api/drafts/products/{sid}/variants/{index} [delete]
func (ctrl *ProductDraftController) RemoveVariant(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid variant index"})
		return
	}
	view, err := s.RemoveVariant(index)
	ctrl.reply(c, "Variant removed", view, err)
}

// @Summary Stage images
// @Description Stage a batch of images. One invalid file rejects the whole batch
// @Tags Product Drafts
// @Accept multipart/form-data
// @Produce json
// @Param sid path string true "Session ID"
// @Param files formData file true "Images"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/media/images [post]
func (ctrl *ProductDraftController) StageImages(c *gin.Context) {
	ctrl.stage(c, services.SlotImages)
}

// @Summary Stage thumbnail
// @Description Stage a single thumbnail image, replacing the staged one
// @Tags Product Drafts
// @Accept multipart/form-data
// @Produce json
// @Param sid path string true "Session ID"
// @Param files formData file true "Image"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/media/thumbnail [post]
func (ctrl *ProductDraftController) StageThumbnail(c *gin.Context) {
	ctrl.stage(c, services.SlotThumbnail)
}

func (ctrl *ProductDraftController) stage(c *gin.Context, slot services.MediaSlot) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	inputs, closeAll, err := stageInputs(c)
	defer closeAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid upload", Error: err.Error()})
		return
	}

	var view services.ProductSessionView
	if slot == services.SlotThumbnail {
		view, err = s.StageThumbnail(inputs)
	} else {
		view, err = s.StageImages(inputs)
	}
	ctrl.reply(c, "Files staged", view, err)
}

// @Summary Remove staged file
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Param slot path string true "images or thumbnail"
// @Param index path int true "Staged position"
// @Success 200 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/media/{slot}/{index} [delete]
func (ctrl *ProductDraftController) RemoveStaged(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	slot, err := services.ParseMediaSlot(c.Param("slot"))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid staged index"})
		return
	}
	view, err := s.RemoveStaged(slot, index)
	ctrl.reply(c, "Staged file removed", view, err)
}

// @Summary Upload staged files
// @Description Upload every staged file of the slot as one batch
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Param slot path string true "images or thumbnail"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/media/{slot}/upload [post]
func (ctrl *ProductDraftController) Upload(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	slot, err := services.ParseMediaSlot(c.Param("slot"))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	view, err := s.Upload(c.Request.Context(), slot)
	ctrl.reply(c, "Upload successful", view, err)
}

// @Summary Remove uploaded image
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Param url query string true "Image URL"
// @Success 200 {object} models.Response
// @Router /api/drafts/products/{sid}/images [delete]
func (ctrl *ProductDraftController) RemoveImage(c *gin.Context) {
	s, ok := ctrl.session(c)
	if !ok {
		return
	}
	view, err := s.RemoveImage(c.Query("url"))
	ctrl.reply(c, "Image removed", view, err)
}

// @Summary Submit product draft
// @Description Create or update the product. A successful update closes the draft
// @Tags Product Drafts
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} models.Response
// @Success 201 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/drafts/products/{sid}/submit [post]
func (ctrl *ProductDraftController) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	product, mode, err := ctrl.Sessions.SubmitProduct(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}

	if mode == services.ModeCreate {
		c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Product added successfully", Data: product})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product updated successfully", Data: product})
}
