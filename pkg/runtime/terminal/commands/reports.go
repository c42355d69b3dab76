package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/civic-tools/civiceye/pkg/models/domain"
	"github.com/civic-tools/civiceye/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// Lister is the read side of the report service.
type Lister interface {
	List(ctx context.Context) ([]domain.Report, error)
	PendingCount(ctx context.Context) (int64, error)
}

type ReportsCmd struct {
	lister   Lister
	reporter *export.Reporter
}

func NewReportsCmd(lister Lister, reporter *export.Reporter) *cobra.Command {
	rc := &ReportsCmd{lister: lister, reporter: reporter}
	return &cobra.Command{
		Use:   "reports",
		Short: "List filed reports, most urgent first",
		RunE:  rc.run,
	}
}

func (rc *ReportsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	reports, err := rc.lister.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	pending, err := rc.lister.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending reports: %w", err)
	}
	cmd.Printf("Awaiting triage: %d\n", pending)

	return rc.reporter.Handle(reports)
}
