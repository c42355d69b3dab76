package domain

import (
	"fmt"
	"time"
)

// Category is the issue type assigned by the analysis step.
type Category string

const (
	CategoryPothole           Category = "Pothole"
	CategoryGarbageOverflow   Category = "Garbage Overflow"
	CategoryBrokenStreetlight Category = "Broken Streetlight"
	CategoryWaterLeakage      Category = "Water Leakage"
	CategoryUnsafeArea        Category = "Unsafe Area"
	CategoryOther             Category = "Other"
	CategoryUnidentified      Category = "Unidentified"
)

var categories = map[Category]struct{}{
	CategoryPothole:           {},
	CategoryGarbageOverflow:   {},
	CategoryBrokenStreetlight: {},
	CategoryWaterLeakage:      {},
	CategoryUnsafeArea:        {},
	CategoryOther:             {},
	CategoryUnidentified:      {},
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Status is the workflow state of a report. Creation always produces
// StatusPending; no transition path exists yet.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusAcknowledged Status = "Acknowledged"
	StatusResolved     Status = "Resolved"
)

// Classification is the structured result of analyzing one submitted image.
type Classification struct {
	Category     Category
	Severity     Severity
	UrgencyScore int
	Summary      string
}

// Validate rejects classifications that fall outside the fixed schema.
// The analysis client treats a validation failure the same as a malformed
// response body.
func (c Classification) Validate() error {
	if !c.Category.Valid() {
		return fmt.Errorf("unknown category %q", c.Category)
	}
	if !c.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", c.Severity)
	}
	if c.UrgencyScore < 1 || c.UrgencyScore > 10 {
		return fmt.Errorf("urgency score %d out of range [1,10]", c.UrgencyScore)
	}
	return nil
}

// Report is a finalized assessment of one submitted issue. Reports are
// immutable after creation.
type Report struct {
	ID           string
	Category     Category
	Severity     Severity
	UrgencyScore int
	Description  string
	Location     string
	Status       Status
	ImagePath    string
	CreatedAt    time.Time
}
