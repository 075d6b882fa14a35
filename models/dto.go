package models

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UpdateDraftRequest carries a partial field update; nil fields are left as-is.
type UpdateDraftRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type UpdateCategoryDraftRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	ParentCategoryID *string `json:"parent_category_id"`
}

type AddTagRequest struct {
	Value string `json:"value" binding:"required"`
	// Suggestion is set when the value was picked from the suggestion list.
	Suggestion *Tag `json:"suggestion"`
}

type VariantRequest struct {
	Name  *string `json:"name"`
	Price *string `json:"price"`
}
