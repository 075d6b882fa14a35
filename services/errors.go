package services

import (
	"errors"

	"catalog-admin/libs"
	"catalog-admin/models"
)

var (
	ErrSessionNotFound = errors.New("draft session not found")
	ErrSubmitInFlight  = errors.New("a submit is already in progress")
	ErrUploadInFlight  = errors.New("an upload is already in progress")
	ErrUploadDiscarded = errors.New("upload discarded after reset")
	ErrSlotLocked      = errors.New("media already uploaded")
	ErrNothingStaged   = errors.New("nothing staged")
	ErrBatchRejected   = errors.New("file batch rejected")
	ErrStagedNotFound  = errors.New("staged file not found")
	ErrUnknownSlot     = errors.New("unknown media slot")
	ErrTagRejected     = errors.New("tag not added")
	ErrPreviewNotFound = errors.New("preview not found")
	ErrInvalidLogin    = errors.New("incorrect email or password")
	ErrVariantNotFound = errors.New(models.MsgVariantNotFound)
)

// MediaError is a staging or upload failure with the message shown to the user.
type MediaError struct {
	Kind       error
	Message    string
	Rejections []libs.Rejection
}

func (e *MediaError) Error() string { return e.Message }

func (e *MediaError) Unwrap() error { return e.Kind }

// SubmitError wraps a failed remote create/update call.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }
