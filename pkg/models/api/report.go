package api

// SubmitReport is the JSON body for POST /api/v1/reports. The image travels
// base64-encoded; multipart uploads are handled outside this service.
type SubmitReport struct {
	ImageBase64 string `json:"image_base64"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

// SubmitReportResponse echoes the classification plus the generated id.
type SubmitReportResponse struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	Severity     string `json:"severity"`
	UrgencyScore int    `json:"urgency_score"`
	Summary      string `json:"summary"`
}

// Report is a full report record as served to the dashboard.
type Report struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	Severity     string `json:"severity"`
	UrgencyScore int    `json:"urgency_score"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Status       string `json:"status"`
	ImagePath    string `json:"image_path,omitempty"`
	Timestamp    string `json:"timestamp"`
}
