package adapters

import (
	"time"

	"github.com/civic-tools/civiceye/pkg/models/api"
	"github.com/civic-tools/civiceye/pkg/models/domain"
	"github.com/civic-tools/civiceye/pkg/models/store"
)

func MapReportDomainToStore(r domain.Report) store.Report {
	return store.Report{
		ID:           r.ID,
		Category:     string(r.Category),
		Severity:     string(r.Severity),
		UrgencyScore: r.UrgencyScore,
		Description:  r.Description,
		Location:     r.Location,
		Status:       string(r.Status),
		ImagePath:    r.ImagePath,
		CreatedAt:    r.CreatedAt,
	}
}

func MapReportStoreToDomain(r store.Report) domain.Report {
	return domain.Report{
		ID:           r.ID,
		Category:     domain.Category(r.Category),
		Severity:     domain.Severity(r.Severity),
		UrgencyScore: r.UrgencyScore,
		Description:  r.Description,
		Location:     r.Location,
		Status:       domain.Status(r.Status),
		ImagePath:    r.ImagePath,
		CreatedAt:    r.CreatedAt,
	}
}

func MapReportDomainToApi(r domain.Report) api.Report {
	return api.Report{
		ID:           r.ID,
		Category:     string(r.Category),
		Severity:     string(r.Severity),
		UrgencyScore: r.UrgencyScore,
		Description:  r.Description,
		Location:     r.Location,
		Status:       string(r.Status),
		ImagePath:    r.ImagePath,
		Timestamp:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func MapSubmissionDomainToApi(r domain.Report) api.SubmitReportResponse {
	return api.SubmitReportResponse{
		ID:           r.ID,
		Category:     string(r.Category),
		Severity:     string(r.Severity),
		UrgencyScore: r.UrgencyScore,
		Summary:      r.Description,
	}
}
