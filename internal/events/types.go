package events

import "github.com/kahvecikaan/product-catalog/internal/domain"

type ProductAdded struct {
	ProductID int           `json:"product_id"`
	Product   domain.Record `json:"product"`
}

type ProductUpdated struct {
	ProductID int           `json:"product_id"`
	Product   domain.Record `json:"product"`
}

type ProductDeleted struct {
	ProductID int `json:"product_id"`
}
