package models

import "time"

// Types mirroring the remote platform's admin API.

type Tag struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type Image struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

type MoneyAmount struct {
	ID           string  `json:"id,omitempty"`
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currency_code,omitempty"`
	RegionID     string  `json:"region_id,omitempty"`
}

type ProductVariant struct {
	ID     string        `json:"id,omitempty"`
	Title  string        `json:"title"`
	Prices []MoneyAmount `json:"prices"`
}

type Category struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Handle           string    `json:"handle,omitempty"`
	Description      string    `json:"description"`
	ParentCategoryID *string   `json:"parent_category_id,omitempty"`
	ParentCategory   *Category `json:"parent_category,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

func (c Category) Key() string { return c.ID }

type Product struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Thumbnail   string           `json:"thumbnail"`
	Status      string           `json:"status,omitempty"`
	Images      []Image          `json:"images"`
	Categories  []Category       `json:"categories"`
	Tags        []Tag            `json:"tags"`
	Variants    []ProductVariant `json:"variants"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (p Product) Key() string { return p.ID }

type Upload struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

type IDRef struct {
	ID string `json:"id"`
}

type TagRef struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
}

type PricePayload struct {
	Amount   float64 `json:"amount"`
	RegionID string  `json:"region_id"`
}

type VariantPayload struct {
	Title  string         `json:"title"`
	Prices []PricePayload `json:"prices"`
}

type ProductPayload struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Categories  []IDRef          `json:"categories"`
	Variants    []VariantPayload `json:"variants"`
	Thumbnail   string           `json:"thumbnail"`
	Images      []string         `json:"images"`
	Tags        []TagRef         `json:"tags"`
	Status      string           `json:"status,omitempty"`
}

type CategoryPayload struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Handle           string `json:"handle"`
	ParentCategoryID string `json:"parent_category_id,omitempty"`
	IsActive         *bool  `json:"is_active,omitempty"`
}

// DraftFromProduct seeds an edit draft from a remote product.
func DraftFromProduct(p Product) DraftProduct {
	d := NewDraftProduct()
	d.ID = p.ID
	d.Name = p.Title
	d.Description = p.Description
	d.Thumbnail = p.Thumbnail
	if len(p.Categories) > 0 {
		d.Category = p.Categories[0].ID
	}
	for _, img := range p.Images {
		d.Images = append(d.Images, img.URL)
	}
	for _, t := range p.Tags {
		d.Tags = append(d.Tags, t.Value)
	}
	for _, v := range p.Variants {
		price := ""
		if len(v.Prices) > 0 {
			price = formatAmount(v.Prices[0].Amount)
		}
		d.Variants = append(d.Variants, Variant{Name: v.Title, Price: price})
	}
	return d
}

func DraftFromCategory(c Category) DraftCategory {
	d := DraftCategory{ID: c.ID, Name: c.Name, Description: c.Description}
	if c.ParentCategoryID != nil {
		d.ParentCategoryID = *c.ParentCategoryID
	}
	return d
}
