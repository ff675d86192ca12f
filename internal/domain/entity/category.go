package entity

import "time"

// Category agrupa repuestos (frenos, suspensión, eléctricos...).
type Category struct {
	ID        string
	Code      string // código único
	Name      string
	CreatedAt time.Time
}
