package models

import (
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	MsgRequiredFields  = "Please fill out all required fields and add at least one image."
	MsgInvalidPrice    = "Every variant needs a numeric price."
	MsgCategoryName    = "Category name is required."
	MsgVariantNotFound = "Variant not found."
)

var ErrValidation = errors.New("validation failed")

// ValidationError lists the draft fields that blocked a submit.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

type Variant struct {
	Name  string `json:"name"`
	Price string `json:"price" validate:"price"`
}

var errPriceOutOfRange = errors.New("price out of range")

// Amount parses the variant price. The remote API expects a plain finite number.
func (v Variant) Amount() (float64, error) {
	return parseAmount(v.Price)
}

func parseAmount(price string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return 0, err
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errPriceOutOfRange
	}
	return f, nil
}

type DraftProduct struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images" validate:"min=1"`
	Thumbnail   string    `json:"thumbnail" validate:"required"`
	Variants    []Variant `json:"variants" validate:"min=1,dive"`
}

func NewDraftProduct() DraftProduct {
	return DraftProduct{
		Tags:     []string{},
		Images:   []string{},
		Variants: []Variant{},
	}
}

func (d DraftProduct) Clone() DraftProduct {
	out := d
	out.Tags = append([]string{}, d.Tags...)
	out.Images = append([]string{}, d.Images...)
	out.Variants = append([]Variant{}, d.Variants...)
	return out
}

func (d DraftProduct) Validate() error {
	return validateDraft(d, MsgRequiredFields)
}

type DraftCategory struct {
	ID               string `json:"id"`
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description"`
	ParentCategoryID string `json:"parent_category_id"`
}

func (d DraftCategory) Validate() error {
	return validateDraft(d, MsgCategoryName)
}

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, err := parseAmount(fl.Field().String())
		return err == nil
	})
	return v
}

func validateDraft(s any, requiredMsg string) error {
	err := draftValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Message: requiredMsg}
	priceOnly := true
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Namespace())
		if fe.Tag() != "price" {
			priceOnly = false
		}
	}
	if priceOnly {
		verr.Message = MsgInvalidPrice
	}
	return verr
}

func formatAmount(a float64) string {
	return decimal.NewFromFloat(a).String()
}
