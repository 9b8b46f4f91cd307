package entity

import "time"

// Size representa una talla del catálogo (S, M, L, 32, 34...).
type Size struct {
	ID          string
	Code        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
