package domain

import "time"

// Announcement is a notice published by an admin to every customer.
type Announcement struct {
	ID        string
	AuthorID  string
	Title     string
	Body      string
	CreatedAt time.Time
}
