package models

import "github.com/uptrace/bun"

// CategoryTag is an explicit category identifier. The capability flags below
// replace matching on free-form category strings.
type CategoryTag string

const (
	CategoryFood   CategoryTag = "food"
	CategoryDrink  CategoryTag = "drink"
	CategoryRetail CategoryTag = "retail"
)

type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID           string      `bun:"id,pk" json:"id"`
	Name         string      `bun:"name,notnull" json:"name"`
	Price        float64     `bun:"price,notnull" json:"price"`
	Category     CategoryTag `bun:"category,notnull" json:"category"`
	KTVOrderable bool        `bun:"ktv_orderable,notnull" json:"ktv_orderable"`
	Available    bool        `bun:"available,notnull" json:"available"`
}
