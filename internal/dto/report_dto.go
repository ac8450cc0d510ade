package dto

import "github.com/Waesta/Wapos-sub001/internal/model"

type GenerateReportRequest struct {
	ClosureType string `json:"closure_type" validate:"required,oneof=x y z"`
	// Finalize only applies to Z reports. A finalized Z commits the closure and
	// advances the baseline; finalize=false produces a transient preview.
	Finalize bool `json:"finalize"`
}

type ClosureListResponse struct {
	Data  []model.ReportClosure `json:"data"`
	Limit int                   `json:"limit"`
}
