package store

import "time"

// Report is the flat row shape of the reports table.
type Report struct {
	ID           string
	Category     string
	Severity     string
	UrgencyScore int
	Description  string
	Location     string
	Status       string
	ImagePath    string
	CreatedAt    time.Time
}
