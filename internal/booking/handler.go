package booking

import (
	"net/http"
	"strconv"
	"time"

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

// CreateBooking godoc
// @Summary      Book a court
// @Description  Creates a confirmed booking after validating the window, pricing the slot and, optionally, deducting prepaid hours.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        booking  body      CreateBookingRequest  true  "Booking details"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	date, start, end, ok := parseWindow(c, req.Date, req.StartTime, req.EndTime)
	if !ok {
		return
	}

	booking, err := h.service.Create(c.Request.Context(), CreateInput{
		UserID:     req.UserID,
		CourtID:    req.CourtID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		UsePackage: req.UsePackage,
	})
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking godoc
// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListUserBookings godoc
// @Summary      List a user's bookings
// @Tags         bookings
// @Produce      json
// @Param        userID  path      int     true   "User ID"
// @Param        status  query     string  false  "Filter by status"  Enums(PENDING, CONFIRMED, COMPLETED, CANCELLED)
// @Success      200     {array}   Booking
// @Router       /users/{userID}/bookings [get]
func (h *Handler) ListUserBookings(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user ID"})
		return
	}

	bookings, err := h.service.ListByUser(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  Cancels a confirmed booking, applying the lead-time penalty and refunding prepaid hours when the penalty allows.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                   true   "Booking ID"
// @Param        request    body      CancelBookingRequest  false  "Cancellation details"
// @Success      200        {object}  CancellationResult
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	var req CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
	}

	result, err := h.service.Cancel(c.Request.Context(), id, req.Reason, req.CancelAllRecurrent)
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Availability godoc
// @Summary      Court availability for a date
// @Description  Walks the 06:00-23:00 operating window in 1-hour steps and reports free slots with estimated prices.
// @Tags         bookings
// @Produce      json
// @Param        courtID  path      int     true  "Court ID"
// @Param        date     query     string  true  "Date (YYYY-MM-DD)"
// @Success      200      {object}  AvailabilityResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /courts/{courtID}/availability [get]
func (h *Handler) Availability(c *gin.Context) {
	courtID, err := strconv.ParseInt(c.Param("courtID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid court ID"})
		return
	}

	date, err := timeslot.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be formatted as YYYY-MM-DD"})
		return
	}

	resp, err := h.service.Availability(c.Request.Context(), courtID, date)
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateRecurrentBooking godoc
// @Summary      Book a weekly recurrent series
// @Description  Books the same slot for 2-12 consecutive weeks. Conflicting weeks fail individually without aborting the rest.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        series  body      RecurrentBookingRequest  true  "Series details"
// @Success      201     {object}  SeriesResult
// @Failure      400     {object}  api.ErrorResponse
// @Router       /bookings/recurrent [post]
func (h *Handler) CreateRecurrentBooking(c *gin.Context) {
	var req RecurrentBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	date, start, end, ok := parseWindow(c, req.StartDate, req.StartTime, req.EndTime)
	if !ok {
		return
	}

	result, err := h.service.CreateSeries(c.Request.Context(), SeriesInput{
		UserID:     req.UserID,
		CourtID:    req.CourtID,
		StartDate:  date,
		StartTime:  start,
		EndTime:    end,
		Weeks:      req.Weeks,
		UsePackage: req.UsePackage,
	})
	if err != nil {
		c.JSON(apperr.Status(err), api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func parseWindow(c *gin.Context, dateStr, startStr, endStr string) (date, start, end time.Time, ok bool) {
	date, err := timeslot.ParseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be formatted as YYYY-MM-DD"})
		return date, start, end, false
	}

	start, err = timeslot.ParseClock(startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_time must be formatted as HH:MM"})
		return date, start, end, false
	}

	end, err = timeslot.ParseClock(endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_time must be formatted as HH:MM"})
		return date, start, end, false
	}

	return date, start, end, true
}
