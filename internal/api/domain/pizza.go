package domain

import "time"

type Pizza struct {
	ID          string
	TenantID    int64
	Name        string
	Description string
	Size        int64
	ImageURL    string
	CreatedBy   string // user ID
	CreatedAt   time.Time

	IngredientIDs []int64
}
