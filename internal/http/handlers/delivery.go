package handlers

import (
	"net/http"
	"strconv"

	"campurent/internal/http/middleware"
	"campurent/internal/services"

	"github.com/gin-gonic/gin"
)

type DeliveryHandler struct {
	Delivery services.DeliveryService
}

type createTaskRequest struct {
	BookingID int64 `json:"booking_id"`
}

// POST /api/delivery/tasks
func (h DeliveryHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	res, err := h.Delivery.CreateTask(req.BookingID, middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	resp := gin.H{"task": res.Task}
	if res.AlreadyExists {
		resp["warning"] = "Task already exists"
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /api/delivery/tasks
func (h DeliveryHandler) GetMyTasks(c *gin.Context) {
	tasks, err := h.Delivery.GetTasksForUser(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GET /api/delivery/tasks/booking/:booking_id
func (h DeliveryHandler) GetTaskByBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return
	}
	task, err := h.Delivery.GetTaskByBooking(bookingID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type verifyOtpRequest struct {
	BookingID int64  `json:"booking_id"`
	Otp       string `json:"otp"`
}

// POST /api/delivery/pickup/verify
func (h DeliveryHandler) VerifyPickup(c *gin.Context) {
	var req verifyOtpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	task, err := h.Delivery.VerifyPickupOtp(req.BookingID, req.Otp, middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

// POST /api/delivery/drop/verify
func (h DeliveryHandler) VerifyDrop(c *gin.Context) {
	var req verifyOtpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	task, err := h.Delivery.VerifyDropOtp(req.BookingID, req.Otp, middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

type locationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// POST /api/delivery/tasks/:id/location
func (h DeliveryHandler) UpdateLocation(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req locationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.Delivery.UpdateLiveLocation(taskID, req.Lat, req.Lng, middleware.CurrentUserID(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/delivery/nearby?lat=..&lng=..&radius_km=..
func (h DeliveryHandler) GetNearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		respondError(c, http.StatusBadRequest, "invalid_coordinates", "lat and lng are required")
		return
	}
	radius := services.DefaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			radius = v
		}
	}

	nearby, err := h.Delivery.FindNearby(lat, lng, radius)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": nearby})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_id", "invalid "+name)
		return 0, false
	}
	return id, true
}
