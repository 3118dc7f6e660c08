package models

import "time"

type Referee struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}
