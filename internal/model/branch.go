package model

import "time"

// Branch is a physical or logical inventory location that stock moves between.
type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
