package model

import "time"

type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Product struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	Allergens    string    `json:"allergens"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// ProductRequest carries optional fields as pointers so that an update can
// distinguish "leave unchanged" from an explicit zero value. Image is a
// base64 data URI; RemoveImage clears the stored asset without replacement.
type ProductRequest struct {
	CategoryID  *int64   `json:"category_id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Allergens   *string  `json:"allergens"`
	SortOrder   *int     `json:"sort_order"`
	IsActive    *bool    `json:"is_active"`
	Image       string   `json:"image"`
	RemoveImage bool     `json:"remove_image"`
}

// MenuCategory is a category with its products nested, as served on the
// public menu endpoint.
type MenuCategory struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	SortOrder   int           `json:"sort_order"`
	Products    []MenuProduct `json:"products"`
}

type MenuProduct struct {
	ID          int64   `json:"id"`
	CategoryID  int64   `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Allergens   string  `json:"allergens"`
}
