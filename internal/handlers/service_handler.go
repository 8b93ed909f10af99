package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository"
	"github.com/localkart/homeservices-api/internal/services"
)

type CreateServiceRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required,servicetype"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Image       string   `json:"image"`
	Rating      float64  `json:"rating" binding:"gte=0,lte=5"`
	Reviews     int      `json:"reviews" binding:"gte=0"`
	Discount    *string  `json:"discount"`
	IsActive    *bool    `json:"isActive"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category" binding:"omitempty,servicetype"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Image       *string  `json:"image"`
	Rating      *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
	Reviews     *int     `json:"reviews" binding:"omitempty,gte=0"`
	Discount    *string  `json:"discount"`
	IsActive    *bool    `json:"isActive"`
}

// GetServices lists the catalog, optionally filtered by ?category= and ?active=.
func (h *Handler) GetServices(c *gin.Context) {
	filter, err := services.ParseServiceFilter(c.Query("category"), c.Query("active"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	list, err := h.Catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, list)
}

func (h *Handler) GetServicesByCategory(c *gin.Context) {
	list, err := h.Catalog.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, list)
}

func (h *Handler) GetService(c *gin.Context) {
	svc, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, svc)
}

func (h *Handler) CreateService(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.Catalog.Create(c.Request.Context(), p, services.ServiceInput{
		Name:        req.Name,
		Category:    models.ServiceType(req.Category),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Rating:      req.Rating,
		Reviews:     req.Reviews,
		Discount:    req.Discount,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, svc)
}

func (h *Handler) UpdateService(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	u := repository.ServiceUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Rating:      req.Rating,
		Reviews:     req.Reviews,
		Discount:    req.Discount,
		IsActive:    req.IsActive,
	}
	if req.Category != nil {
		cat := models.ServiceType(*req.Category)
		u.Category = &cat
	}

	svc, err := h.Catalog.Update(c.Request.Context(), p, c.Param("id"), u)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, svc)
}

func (h *Handler) DeleteService(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Service deleted successfully"})
}

func (h *Handler) ToggleService(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	svc, err := h.Catalog.Toggle(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, svc)
}
