package services

import (
	"context"
	"sync"
	"time"

	"catalog-admin/models"
	"catalog-admin/utils"

	"github.com/google/uuid"
)

const (
	msgCreateCategoryFailed = "Failed to add category. Please try again."
	msgUpdateCategoryFailed = "Failed to update category. Please try again."
)

type CategorySessionView struct {
	SessionID  string               `json:"session_id"`
	Mode       DraftMode            `json:"mode"`
	Draft      models.DraftCategory `json:"draft"`
	Submitting bool                 `json:"submitting"`
	Error      string               `json:"error,omitempty"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// CategorySession is one user's in-progress category draft.
type CategorySession struct {
	ID    uuid.UUID
	Owner string

	mu         sync.Mutex
	categoryID string
	draft      models.DraftCategory
	submitting bool
	lastError  string
	closed     bool
	updatedAt  time.Time
}

func NewCategorySession(id uuid.UUID, owner string, draft models.DraftCategory) *CategorySession {
	return &CategorySession{
		ID:         id,
		Owner:      owner,
		categoryID: draft.ID,
		draft:      draft,
		updatedAt:  time.Now(),
	}
}

func (s *CategorySession) Mode() DraftMode {
	if s.categoryID == "" {
		return ModeCreate
	}
	return ModeEdit
}

func (s *CategorySession) View() CategorySessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *CategorySession) viewLocked() CategorySessionView {
	return CategorySessionView{
		SessionID:  s.ID.String(),
		Mode:       s.Mode(),
		Draft:      s.draft,
		Submitting: s.submitting,
		Error:      s.lastError,
		UpdatedAt:  s.updatedAt,
	}
}

func (s *CategorySession) UpdateFields(req models.UpdateCategoryDraftRequest) (CategorySessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return CategorySessionView{}, ErrSessionNotFound
	}
	if req.Name != nil {
		s.draft.Name = *req.Name
	}
	if req.Description != nil {
		s.draft.Description = *req.Description
	}
	if req.ParentCategoryID != nil {
		s.draft.ParentCategoryID = *req.ParentCategoryID
	}
	s.updatedAt = time.Now()
	return s.viewLocked(), nil
}

// Submit issues exactly one create or update call for a valid draft.
func (s *CategorySession) Submit(ctx context.Context, api CatalogAPI) (*models.Category, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := s.draft.Validate(); err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		return nil, err
	}
	mode := s.Mode()
	payload := BuildCategoryPayload(s.draft, mode == ModeCreate)
	s.submitting = true
	s.mu.Unlock()

	var (
		category *models.Category
		err      error
	)
	if mode == ModeCreate {
		category, err = api.CreateCategory(ctx, payload)
	} else {
		category, err = api.UpdateCategory(ctx, s.categoryID, payload)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		msg := msgCreateCategoryFailed
		if mode == ModeEdit {
			msg = msgUpdateCategoryFailed
		}
		s.lastError = msg
		return nil, &SubmitError{Message: msg, Err: err}
	}
	s.lastError = ""
	if mode == ModeCreate {
		s.draft = models.DraftCategory{}
		s.updatedAt = time.Now()
	}
	return category, nil
}

func (s *CategorySession) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// BuildCategoryPayload translates a category draft. The handle is derived from
// the name.
func BuildCategoryPayload(d models.DraftCategory, create bool) models.CategoryPayload {
	payload := models.CategoryPayload{
		Name:             d.Name,
		Description:      d.Description,
		Handle:           utils.Handle(d.Name),
		ParentCategoryID: d.ParentCategoryID,
	}
	if create {
		active := true
		payload.IsActive = &active
	}
	return payload
}
