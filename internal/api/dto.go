package api

import "courseprogress/internal/report"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Busy    bool   `json:"busy"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SummaryResponse struct {
	Root         string           `json:"root"`
	Items        int              `json:"items"`
	Sections     []SectionSummary `json:"sections"`
	TotalMinutes float64          `json:"total_minutes"`
	Total        string           `json:"total"` // "Xh Ym"
}

type SectionSummary struct {
	report.SectionSummary
	Total string `json:"total"`
}

type GenerateResponse struct {
	Status string `json:"status"`
	Output string `json:"output"`
	Size   string `json:"size"`
	Items  int    `json:"items"`
	Total  string `json:"total"`
}

func newSummaryResponse(root string, m *report.Model) SummaryResponse {
	sections := make([]SectionSummary, 0, len(m.Sections))
	for _, s := range m.Sections {
		sections = append(sections, SectionSummary{
			SectionSummary: s,
			Total:          report.HoursMinutes(s.TotalMinutes),
		})
	}
	return SummaryResponse{
		Root:         root,
		Items:        len(m.Rows),
		Sections:     sections,
		TotalMinutes: m.TotalMinutes,
		Total:        report.HoursMinutes(m.TotalMinutes),
	}
}
