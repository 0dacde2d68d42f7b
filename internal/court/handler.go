package court

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateCourt godoc
// @Summary      Create court
// @Tags         courts
// @Accept       json
// @Produce      json
// @Param        court  body      CreateCourtRequest  true  "Court"
// @Success      201    {object}  Court
// @Failure      400    {object}  api.ErrorResponse
// @Failure      500    {object}  api.ErrorResponse
// @Router       /admin/courts [post]
func (h *Handler) CreateCourt(c *gin.Context) {
	var req CreateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	rate, err := decimal.NewFromString(req.BaseHourRate)
	if err != nil || !rate.IsPositive() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "base_hour_rate must be a positive decimal"})
		return
	}

	created, err := h.repo.Create(c.Request.Context(), &Court{
		Name:         req.Name,
		SportType:    req.SportType,
		Capacity:     req.Capacity,
		BaseHourRate: rate,
		Active:       true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create court"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListCourts godoc
// @Summary      List courts
// @Tags         courts
// @Produce      json
// @Success      200  {array}   Court
// @Failure      500  {object}  api.ErrorResponse
// @Router       /courts [get]
func (h *Handler) ListCourts(c *gin.Context) {
	courts, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch courts"})
		return
	}

	c.JSON(http.StatusOK, courts)
}

// GetCourt godoc
// @Summary      Get court
// @Tags         courts
// @Produce      json
// @Param        courtID  path      int  true  "Court ID"
// @Success      200      {object}  Court
// @Failure      404      {object}  api.ErrorResponse
// @Router       /courts/{courtID} [get]
func (h *Handler) GetCourt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("courtID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid court ID"})
		return
	}

	court, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCourtNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "court not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch court"})
		return
	}

	c.JSON(http.StatusOK, court)
}

// UpdateCourt godoc
// @Summary      Update court
// @Tags         courts
// @Accept       json
// @Produce      json
// @Param        courtID  path      int                 true  "Court ID"
// @Param        court    body      UpdateCourtRequest  true  "Court"
// @Success      200      {object}  Court
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /admin/courts/{courtID} [put]
func (h *Handler) UpdateCourt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("courtID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid court ID"})
		return
	}

	var req UpdateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	rate, err := decimal.NewFromString(req.BaseHourRate)
	if err != nil || !rate.IsPositive() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "base_hour_rate must be a positive decimal"})
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), &Court{
		ID:           id,
		Name:         req.Name,
		SportType:    req.SportType,
		Capacity:     req.Capacity,
		BaseHourRate: rate,
		Active:       *req.Active,
	})
	if err != nil {
		if errors.Is(err, ErrCourtNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "court not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to update court"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeactivateCourt godoc
// @Summary      Deactivate court
// @Tags         courts
// @Produce      json
// @Param        courtID  path      int  true  "Court ID"
// @Success      200      {object}  api.MessageResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /admin/courts/{courtID} [delete]
func (h *Handler) DeactivateCourt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("courtID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid court ID"})
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrCourtNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "court not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to deactivate court"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "court deactivated"})
}
