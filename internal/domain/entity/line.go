package entity

import "time"

// Line representa una línea de producto (ej. camisería, pantalonería, uniformes).
type Line struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
