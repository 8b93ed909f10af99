package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/services"
)

type addressRequest struct {
	Label       *string `json:"label"`
	AddressLine *string `json:"addressLine"`
	IsDefault   *bool   `json:"isDefault"`
}

func (r addressRequest) input() services.AddressInput {
	return services.AddressInput{Label: r.Label, AddressLine: r.AddressLine, IsDefault: r.IsDefault}
}

// Every address endpoint answers with the whole updated user.
func (h *Handler) addressResult(c *gin.Context, user *models.User, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *Handler) AddAddress(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req addressRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.AddAddress(c.Request.Context(), p, req.input())
	h.addressResult(c, user, err)
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req addressRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.UpdateAddress(c.Request.Context(), p, c.Param("id"), req.input())
	h.addressResult(c, user, err)
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	user, err := h.Auth.DeleteAddress(c.Request.Context(), p, c.Param("id"))
	h.addressResult(c, user, err)
}

func (h *Handler) SetDefaultAddress(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	user, err := h.Auth.SetDefaultAddress(c.Request.Context(), p, c.Param("id"))
	h.addressResult(c, user, err)
}
