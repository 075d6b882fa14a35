package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() DraftProduct {
	d := NewDraftProduct()
	d.Name = "Carrot"
	d.Description = "<p>fresh</p>"
	d.Category = "cat_1"
	d.Thumbnail = "url_a"
	d.Images = []string{"url_b"}
	d.Variants = []Variant{{Name: "1kg", Price: "40"}}
	return d
}

func TestDraftProduct_Validate(t *testing.T) {
	require.NoError(t, validDraft().Validate())

	tests := []struct {
		name   string
		mutate func(*DraftProduct)
		msg    string
	}{
		{"missing name", func(d *DraftProduct) { d.Name = "" }, MsgRequiredFields},
		{"missing description", func(d *DraftProduct) { d.Description = "" }, MsgRequiredFields},
		{"missing category", func(d *DraftProduct) { d.Category = "" }, MsgRequiredFields},
		{"no images", func(d *DraftProduct) { d.Images = []string{} }, MsgRequiredFields},
		{"no thumbnail", func(d *DraftProduct) { d.Thumbnail = "" }, MsgRequiredFields},
		{"no variants", func(d *DraftProduct) { d.Variants = []Variant{} }, MsgRequiredFields},
		{"non numeric price", func(d *DraftProduct) { d.Variants[0].Price = "forty" }, MsgInvalidPrice},
		{"price overflows", func(d *DraftProduct) { d.Variants[0].Price = "1e400" }, MsgInvalidPrice},
		{"negative price overflows", func(d *DraftProduct) { d.Variants[0].Price = "-1e400" }, MsgInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			err := d.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Message)
			assert.NotEmpty(t, verr.Fields)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestDraftCategory_Validate(t *testing.T) {
	assert.NoError(t, DraftCategory{Name: "Fruit"}.Validate())

	err := DraftCategory{}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgCategoryName, verr.Message)
}

func TestVariant_Amount(t *testing.T) {
	amount, err := Variant{Price: " 12.50 "}.Amount()
	require.NoError(t, err)
	assert.Equal(t, 12.5, amount)

	_, err = Variant{Price: ""}.Amount()
	assert.Error(t, err)

	_, err = Variant{Price: "1e400"}.Amount()
	assert.ErrorIs(t, err, errPriceOutOfRange)
}

func TestDraftProduct_Clone(t *testing.T) {
	d := validDraft()
	c := d.Clone()
	c.Images[0] = "other"
	c.Variants[0].Price = "1"

	assert.Equal(t, "url_b", d.Images[0])
	assert.Equal(t, "40", d.Variants[0].Price)
}

func TestDraftFromProduct(t *testing.T) {
	parent := "cat_0"
	d := DraftFromProduct(Product{
		ID:          "prod_1",
		Title:       "Carrot",
		Description: "<p>fresh</p>",
		Thumbnail:   "url_a",
		Images:      []Image{{URL: "url_b"}, {URL: "url_c"}},
		Categories:  []Category{{ID: "cat_1", ParentCategoryID: &parent}},
		Tags:        []Tag{{ID: "t1", Value: "organic"}},
		Variants:    []ProductVariant{{Title: "1kg", Prices: []MoneyAmount{{Amount: 40.5}}}, {Title: "2kg"}},
	})

	assert.Equal(t, "prod_1", d.ID)
	assert.Equal(t, "cat_1", d.Category)
	assert.Equal(t, []string{"url_b", "url_c"}, d.Images)
	assert.Equal(t, []string{"organic"}, d.Tags)
	assert.Equal(t, []Variant{{Name: "1kg", Price: "40.5"}, {Name: "2kg", Price: ""}}, d.Variants)

	c := DraftFromCategory(Category{ID: "cat_1", Name: "Fruit", ParentCategoryID: &parent})
	assert.Equal(t, DraftCategory{ID: "cat_1", Name: "Fruit", ParentCategoryID: "cat_0"}, c)
}
