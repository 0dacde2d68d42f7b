package waitlist

import (
	"net/http"
	"strconv"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/api"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/apperr"
	"github.com/Rodrigo-Salva/court-reservation-api/internal/timeslot"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Enqueue godoc
// @Summary      Join a waiting list
// @Description  Adds the user to the FIFO queue for a court/date/time window.
// @Tags         waitlist
// @Accept       json
// @Produce      json
// @Param        entry  body      EnqueueRequest  true  "Desired slot"
// @Success      201    {object}  EntryResponse
// @Failure      400    {object}  api.ErrorResponse
// @Failure      404    {object}  api.ErrorResponse
// @Router       /waitlist [post]
func (h *Handler) Enqueue(c *gin.Context) {
	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	date, err := timeslot.ParseDate(req.DesiredDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "desired_date must be formatted as YYYY-MM-DD"})
		return
	}

	start, err := timeslot.ParseClock(req.DesiredStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "desired_start_time must be formatted as HH:MM"})
		return
	}

	end, err := timeslot.ParseClock(req.DesiredEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "desired_end_time must be formatted as HH:MM"})
		return
	}

	entry, err := h.service.Enqueue(c.Request.Context(), EnqueueInput{
		UserID:       req.UserID,
		CourtID:      req.CourtID,
		DesiredDate:  date,
		DesiredStart: start,
		DesiredEnd:   end,
	})
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetEntry godoc
// @Summary      Get waiting list entry
// @Tags         waitlist
// @Produce      json
// @Param        entryID  path      int  true  "Entry ID"
// @Success      200      {object}  EntryResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /waitlist/{entryID} [get]
func (h *Handler) GetEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid entry ID"})
		return
	}

	entry, err := h.service.GetEntry(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListByUser godoc
// @Summary      List a user's waiting list entries
// @Tags         waitlist
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {array}   EntryResponse
// @Router       /users/{userID}/waitlist [get]
func (h *Handler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user ID"})
		return
	}

	entries, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch waiting list"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Remove godoc
// @Summary      Leave a waiting list
// @Tags         waitlist
// @Produce      json
// @Param        entryID  path      int  true  "Entry ID"
// @Success      200      {object}  api.MessageResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /waitlist/{entryID} [delete]
func (h *Handler) Remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid entry ID"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "removed from waiting list"})
}
