package report

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/civic-tools/civiceye/pkg/adapters"
	"github.com/civic-tools/civiceye/pkg/models/api"
	"github.com/civic-tools/civiceye/pkg/models/domain"
	reportsvc "github.com/civic-tools/civiceye/pkg/services/report"
	"github.com/rs/zerolog"
)

// Service is the slice of the report service the handler needs.
type Service interface {
	Submit(ctx context.Context, sub reportsvc.Submission) (domain.Report, error)
	List(ctx context.Context) ([]domain.Report, error)
}

type Handler struct {
	reports Service
}

func NewHandler(reports Service) *Handler {
	return &Handler{reports: reports}
}

func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var body api.SubmitReport
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	image, err := base64.StdEncoding.DecodeString(body.ImageBase64)
	if err != nil {
		http.Error(w, "image_base64 is not valid base64", http.StatusBadRequest)
		return
	}

	rep, err := h.reports.Submit(ctx, reportsvc.Submission{
		Image:       image,
		Location:    body.Location,
		Description: body.Description,
	})
	if err != nil {
		var verr *reportsvc.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		logger.Error().Err(err).Msg("failed to file report")
		http.Error(w, "failed to file report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(adapters.MapSubmissionDomainToApi(rep)); err != nil {
		logger.Error().
			Err(err).
			Str("report_id", rep.ID).
			Msg("failed to encode submission response")
	}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	reports, err := h.reports.List(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list reports")
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	response := make([]api.Report, 0, len(reports))
	for _, rep := range reports {
		response = append(response, adapters.MapReportDomainToApi(rep))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("failed to encode reports")
	}
}
