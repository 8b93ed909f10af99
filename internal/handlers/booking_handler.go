package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localkart/homeservices-api/internal/middleware"
	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/services"
)

// CreateBookingRequest has no status or user field: both are decided by
// the server.
type CreateBookingRequest struct {
	CustomerName  string   `json:"customerName" binding:"required"`
	CustomerEmail string   `json:"customerEmail" binding:"required,email"`
	CustomerPhone string   `json:"customerPhone" binding:"required"`
	ServiceType   string   `json:"serviceType" binding:"required,servicetype"`
	ServiceOption string   `json:"serviceOption" binding:"required"`
	Date          string   `json:"date" binding:"required"`
	Time          string   `json:"time" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	Notes         string   `json:"notes"`
	TotalPrice    *float64 `json:"totalPrice" binding:"required,gte=0"`
}

type UpdateBookingRequest struct {
	ServiceOption *string  `json:"serviceOption"`
	Date          *string  `json:"date"`
	Time          *string  `json:"time"`
	Address       *string  `json:"address"`
	Notes         *string  `json:"notes"`
	CustomerName  *string  `json:"customerName"`
	CustomerEmail *string  `json:"customerEmail" binding:"omitempty,email"`
	CustomerPhone *string  `json:"customerPhone"`
	TotalPrice    *float64 `json:"totalPrice" binding:"omitempty,gte=0"`
	Status        *string  `json:"status" binding:"omitempty,bookingstatus"`
}

func invalidDate(c *gin.Context) {
	respondBadRequest(c, "Invalid request body", []FieldError{{
		Field: "date", Rule: "date", Message: "must be YYYY-MM-DD or an RFC 3339 timestamp",
	}})
}

// CreateBooking is open to guests. A valid token makes the caller the owner.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	date, ok := parseBookingDate(req.Date)
	if !ok {
		invalidDate(c)
		return
	}

	b, err := h.Bookings.Create(c.Request.Context(), middleware.ActorFromContext(c), services.BookingInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ServiceType:   models.ServiceType(req.ServiceType),
		ServiceOption: req.ServiceOption,
		Date:          date,
		Time:          req.Time,
		Address:       req.Address,
		Notes:         req.Notes,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, b)
}

func (h *Handler) GetAllBookings(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListAll(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, list)
}

func (h *Handler) GetMyBookings(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListMine(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, list)
}

func (h *Handler) GetBooking(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	v, err := h.Bookings.GetOne(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, v)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := models.BookingPatch{
		ServiceOption: req.ServiceOption,
		Time:          req.Time,
		Address:       req.Address,
		Notes:         req.Notes,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		TotalPrice:    req.TotalPrice,
	}
	if req.Date != nil {
		date, ok := parseBookingDate(*req.Date)
		if !ok {
			invalidDate(c)
			return
		}
		patch.Date = &date
	}
	if req.Status != nil {
		s := models.BookingStatus(*req.Status)
		patch.Status = &s
	}

	b, err := h.Bookings.Update(c.Request.Context(), p, c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, b)
}

// CancelBooking backs DELETE /bookings/:id. The booking is kept with status
// cancelled.
func (h *Handler) CancelBooking(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, b)
}
