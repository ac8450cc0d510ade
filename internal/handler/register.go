package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Waesta/Wapos-sub001/internal/apierror"
	"github.com/Waesta/Wapos-sub001/internal/dto"
	"github.com/Waesta/Wapos-sub001/internal/middleware"
	"github.com/Waesta/Wapos-sub001/internal/service"
)

type RegisterHandler struct{ svc service.SessionService }

func NewRegisterHandler(svc service.SessionService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Open godoc
// @Summary Opens a new register session
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} model.RegisterSession
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operator, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id"))
		return
	}

	session, err := h.svc.Open(c.Request.Context(), claims.RegisterCode, operator, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Close godoc
// @Summary Closes a register session and reconciles counted cash
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseSessionRequest true "Closing data"
// @Success 200 {object} dto.CloseSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Close(c.Request.Context(), claims.RegisterCode, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active returns the currently open session for the register in scope.
func (h *RegisterHandler) Active(c *gin.Context) {
	claims := middleware.GetClaims(c)

	session, err := h.svc.Active(c.Request.Context(), claims.RegisterCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, apierror.New("no active session"))
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions returns recent sessions, most recent first.
func (h *RegisterHandler) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	claims := middleware.GetClaims(c)

	sessions, err := h.svc.List(c.Request.Context(), claims.RegisterCode, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.SessionListResponse{Data: sessions, Limit: limit})
}
