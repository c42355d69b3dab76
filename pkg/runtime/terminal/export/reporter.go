package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/civic-tools/civiceye/pkg/models/domain"
)

type TableConfig struct {
	IDWidth       int
	CategoryWidth int
	SeverityWidth int
	UrgencyWidth  int
	LocationWidth int
	ReportedWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		IDWidth:       36,
		CategoryWidth: 18,
		SeverityWidth: 8,
		UrgencyWidth:  7,
		LocationWidth: 32,
		ReportedWidth: 20,
	}
}

// Reporter renders the ranked report list as a text table.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(reports []domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(id, category, severity string, urgency interface{}, location, reported string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*v | %-*s | %-*s |",
				c.config.IDWidth, id,
				c.config.CategoryWidth, category,
				c.config.SeverityWidth, severity,
				c.config.UrgencyWidth, urgency,
				c.config.LocationWidth, location,
				c.config.ReportedWidth, reported)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.IDWidth+2),
				strings.Repeat("-", c.config.CategoryWidth+2),
				strings.Repeat("-", c.config.SeverityWidth+2),
				strings.Repeat("-", c.config.UrgencyWidth+2),
				strings.Repeat("-", c.config.LocationWidth+2),
				strings.Repeat("-", c.config.ReportedWidth+2))
		},
	}

	tmpl := `
Active Reports ({{len .}} total, most urgent first)

{{separator}}
{{formatRow "ID" "Category" "Severity" "Urgency" "Location" "Reported"}}
{{separator}}
{{range .}}{{formatRow .ID (printf "%s" .Category) (printf "%s" .Severity) .UrgencyScore .Location (.CreatedAt.Format "2006-01-02 15:04:05")}}
{{end}}{{separator}}
`

	t, err := template.New("reports").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, reports)
}
