package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/civic-tools/civiceye/pkg/adapters"
	"github.com/civic-tools/civiceye/pkg/models/domain"
	storemodels "github.com/civic-tools/civiceye/pkg/models/store"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ValidationError rejects a submission before any analysis is attempted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing " + e.Field
}

// Analyzer produces a classification for an image. It never fails; see
// the analysis package.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, description string) domain.Classification
}

// Store is the slice of the report store the service needs.
type Store interface {
	Add(ctx context.Context, record storemodels.Report) error
	ListByPriority(ctx context.Context) ([]storemodels.Report, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Submission is one inbound issue report.
type Submission struct {
	Image       []byte
	Location    string
	Description string
}

// Service runs the submission pipeline: validate, classify, persist.
type Service struct {
	analyzer Analyzer
	store    Store
	imageDir string

	now   func() time.Time
	newID func() string
}

// NewService wires the pipeline. imageDir may be empty, in which case
// uploaded bytes are not kept and image_path stays blank.
func NewService(analyzer Analyzer, store Store, imageDir string) (*Service, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Service{
		analyzer: analyzer,
		store:    store,
		imageDir: imageDir,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}, nil
}

// Submit validates the submission, classifies the image and persists the
// resulting report. The classification step degrades to a default result
// rather than failing; only validation and persistence problems surface.
func (s *Service) Submit(ctx context.Context, sub Submission) (domain.Report, error) {
	logger := zerolog.Ctx(ctx)

	if len(sub.Image) == 0 {
		return domain.Report{}, &ValidationError{Field: "image"}
	}
	if strings.TrimSpace(sub.Location) == "" {
		return domain.Report{}, &ValidationError{Field: "location"}
	}

	cls := s.analyzer.Analyze(ctx, sub.Image, sub.Description)

	description := cls.Summary
	if description == "" {
		description = sub.Description
	}

	rep := domain.Report{
		ID:           s.newID(),
		Category:     cls.Category,
		Severity:     cls.Severity,
		UrgencyScore: cls.UrgencyScore,
		Description:  description,
		Location:     strings.TrimSpace(sub.Location),
		Status:       domain.StatusPending,
		CreatedAt:    s.now(),
	}

	if s.imageDir != "" {
		path, err := s.saveImage(rep.ID, sub.Image)
		if err != nil {
			// The image copy is auxiliary; the report is still filed.
			logger.Warn().Err(err).Str("report_id", rep.ID).Msg("failed to keep uploaded image")
		} else {
			rep.ImagePath = path
		}
	}

	if err := s.store.Add(ctx, adapters.MapReportDomainToStore(rep)); err != nil {
		return domain.Report{}, fmt.Errorf("persist report: %w", err)
	}

	logger.Info().
		Str("report_id", rep.ID).
		Str("category", string(rep.Category)).
		Int("urgency_score", rep.UrgencyScore).
		Msg("report filed")
	return rep, nil
}

// List returns every report, most urgent first.
func (s *Service) List(ctx context.Context) ([]domain.Report, error) {
	records, err := s.store.ListByPriority(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]domain.Report, 0, len(records))
	for _, r := range records {
		reports = append(reports, adapters.MapReportStoreToDomain(r))
	}
	return reports, nil
}

// PendingCount returns how many reports still await triage.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return counts[string(domain.StatusPending)], nil
}

func (s *Service) saveImage(id string, image []byte) (string, error) {
	if err := os.MkdirAll(s.imageDir, 0o755); err != nil {
		return "", err
	}
	name := id + mimetype.Detect(image).Extension()
	if err := os.WriteFile(filepath.Join(s.imageDir, name), image, 0o644); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
