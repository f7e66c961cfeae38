package handlers

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateBooking POST /bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), req.toService(userID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(booking))
}

// ListBookings GET /bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingsResponse(bookings))
}

// GetBooking GET /bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	h.bookingAction(c, h.bookingService.Get)
}

// AcceptBooking POST /bookings/:id/accept
func (h *Handlers) AcceptBooking(c *gin.Context) {
	h.bookingAction(c, h.bookingService.AcceptBooking)
}

// CompleteBooking POST /bookings/:id/complete
func (h *Handlers) CompleteBooking(c *gin.Context) {
	h.bookingAction(c, h.bookingService.CompleteBooking)
}

// MarkItemsReceived POST /bookings/:id/items-received
func (h *Handlers) MarkItemsReceived(c *gin.Context) {
	h.bookingAction(c, h.bookingService.MarkItemsReceived)
}

// RejectBooking POST /bookings/:id/reject
func (h *Handlers) RejectBooking(c *gin.Context) {
	userID, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	booking, err := h.bookingService.RejectBooking(c.Request.Context(), bookingID, userID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(booking))
}

// CancelBooking POST /bookings/:id/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	userID, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.bookingService.CancelOrReschedule(c.Request.Context(), service.CancelOrRescheduleRequest{
		BookingID:   bookingID,
		ActorUserID: userID,
		Reason:      req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RescheduleBooking POST /bookings/:id/reschedule
func (h *Handlers) RescheduleBooking(c *gin.Context) {
	userID, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.bookingService.CancelOrReschedule(c.Request.Context(), service.CancelOrRescheduleRequest{
		BookingID:    bookingID,
		ActorUserID:  userID,
		Reason:       req.Reason,
		IsReschedule: true,
		NewStartTime: &req.NewStartTime,
		NewEndTime:   &req.NewEndTime,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RespondReschedule POST /bookings/:id/reschedule/respond
func (h *Handlers) RespondReschedule(c *gin.Context) {
	userID, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	var req respondRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	booking, err := h.bookingService.RespondReschedule(c.Request.Context(), bookingID, userID, *req.Approve)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(booking))
}

// RateBooking POST /bookings/:id/rating
func (h *Handlers) RateBooking(c *gin.Context) {
	userID, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	rating, err := h.bookingService.RateBooking(c.Request.Context(), service.RateBookingRequest{
		BookingID: bookingID,
		ClientID:  userID,
		Score:     req.Score,
		Comment:   req.Comment,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

type bookingActionFunc func(ctx context.Context, bookingID, actorUserID uuid.UUID) (*model.Booking, error)

// bookingAction общий обработчик действий без тела запроса
func (h *Handlers) bookingAction(c *gin.Context, action bookingActionFunc) {
	userID, bookingID, ok := h.bookingParams(c)
	if !ok {
		return
	}

	booking, err := action(c.Request.Context(), bookingID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(booking))
}

func (h *Handlers) bookingParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.userOrAbort(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	bookingID, ok := h.pathID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, bookingID, true
}
