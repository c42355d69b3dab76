package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/civic-tools/civiceye/pkg/models/domain"
	reportsvc "github.com/civic-tools/civiceye/pkg/services/report"
	"github.com/spf13/cobra"
)

// Submitter files one report.
type Submitter interface {
	Submit(ctx context.Context, sub reportsvc.Submission) (domain.Report, error)
}

// SubmitterFactory builds a submitter from an analysis profile file; the
// profile carries the inference endpoint credentials.
type SubmitterFactory func(ctx context.Context, profilePath string) (Submitter, error)

type SubmitCmd struct {
	profilePath string
	imagePath   string
	location    string
	description string
	factory     SubmitterFactory
}

func NewSubmitCmd(factory SubmitterFactory) *cobra.Command {
	sc := &SubmitCmd{factory: factory}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a civic issue report from an image file",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profilePath, "profile", "", "Path to the analysis configuration profile")
	cmd.Flags().StringVar(&sc.imagePath, "image", "", "Path to the photo of the issue")
	cmd.Flags().StringVar(&sc.location, "location", "", "Location tag, e.g. \"5th Avenue, Near Central Park\"")
	cmd.Flags().StringVar(&sc.description, "description", "", "Optional description of the problem")

	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func (sc *SubmitCmd) run(cmd *cobra.Command, _ []string) error {
	// The analysis retry schedule alone can take over 30s.
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	image, err := os.ReadFile(sc.imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", sc.imagePath, err)
	}

	submitter, err := sc.factory(ctx, sc.profilePath)
	if err != nil {
		return fmt.Errorf("failed to configure submission pipeline: %w", err)
	}

	report, err := submitter.Submit(ctx, reportsvc.Submission{
		Image:       image,
		Location:    sc.location,
		Description: sc.description,
	})
	if err != nil {
		return fmt.Errorf("failed to submit report: %w", err)
	}

	cmd.Printf("Report %s filed: %s / %s, urgency %d\n",
		report.ID, report.Category, report.Severity, report.UrgencyScore)
	return nil
}
