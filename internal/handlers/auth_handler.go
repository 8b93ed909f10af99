package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localkart/homeservices-api/internal/services"
)

type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterUser creates an account and signs the caller in. Role is never
// taken from the body.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Envelope{Success: true, Token: res.Token, Data: res.User})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Token: res.Token, Data: res.User})
}

// GetCurrentUser returns the caller's own record, address book included.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	user, err := h.Auth.GetMe(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateCurrentUser lets users change their own name and phone.
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Auth.UpdateProfile(c.Request.Context(), p, services.ProfileUpdate{Name: req.Name, Phone: req.Phone})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}
