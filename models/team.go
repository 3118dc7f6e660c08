package models

import "time"

// Team is a registry entry. The bracket engine only ever references it by id.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ShortName *string   `json:"short_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
