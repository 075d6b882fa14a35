package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-admin/clients"
	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &models.ValidationError{Message: models.MsgRequiredFields, Fields: []string{"DraftProduct.Name"}}, http.StatusUnprocessableEntity, models.MsgRequiredFields},
		{"rejected batch", &services.MediaError{Kind: services.ErrBatchRejected, Message: "Only image files are accepted."}, http.StatusBadRequest, "Only image files are accepted."},
		{"locked slot", &services.MediaError{Kind: services.ErrSlotLocked, Message: "locked"}, http.StatusConflict, "locked"},
		{"bad login", fmt.Errorf("%w: 401", services.ErrInvalidLogin), http.StatusUnauthorized, "Incorrect email or password"},
		{"missing session", services.ErrSessionNotFound, http.StatusNotFound, "Draft session not found"},
		{"missing variant", services.ErrVariantNotFound, http.StatusNotFound, models.MsgVariantNotFound},
		{"double submit", services.ErrSubmitInFlight, http.StatusConflict, "A submit is already in progress"},
		{"tag", services.ErrTagRejected, http.StatusBadRequest, "Tag not added"},
		{"expired token", fmt.Errorf("list products: %w", &clients.APIError{StatusCode: http.StatusUnauthorized}), http.StatusUnauthorized, "Session expired, please log in again"},
		{"submit failure", &services.SubmitError{Message: "Failed to add product. Please try again.", Err: errors.New("boom")}, http.StatusBadGateway, "Failed to add product. Please try again."},
		{"remote 404", fmt.Errorf("get product: %w", &clients.APIError{StatusCode: http.StatusNotFound}), http.StatusNotFound, "Not found"},
		{"network", errors.New("dial tcp: refused"), http.StatusBadGateway, "Failed to reach the catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, log, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprintf(`"message":%q`, tt.msg))
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Preview not found", capitalize("preview not found"))
	assert.Equal(t, "", capitalize(""))
}
