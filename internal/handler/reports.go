package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Waesta/Wapos-sub001/internal/apierror"
	"github.com/Waesta/Wapos-sub001/internal/dto"
	"github.com/Waesta/Wapos-sub001/internal/middleware"
	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/service"
)

type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Generate godoc
// @Summary Generates an X, Y, or Z register report
// @Description X and non-finalized Z reports are transient snapshots; Y and
// @Description finalized Z reports are committed to the closure ledger. A
// @Description finalized Z advances the baseline for all subsequent reports.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.GenerateReportRequest true "Report request"
// @Success 200 {object} model.ReportClosure
// @Success 201 {object} model.ReportClosure
// @Failure 409 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/reports/generate [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req dto.GenerateReportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	closure, err := h.svc.Generate(c.Request.Context(), claims.RegisterCode, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// 201 when an audit record was committed, 200 for transient snapshots.
	status := http.StatusOK
	if req.ClosureType == model.ClosureY || closure.ResetApplied {
		status = http.StatusCreated
	}
	c.JSON(status, closure)
}

// ListClosures returns the audit trail, most recent first.
func (h *ReportHandler) ListClosures(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	claims := middleware.GetClaims(c)

	closures, err := h.svc.ListClosures(c.Request.Context(), claims.RegisterCode, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.ClosureListResponse{Data: closures, Limit: limit})
}
