package users

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authsvc "booking-app/internal/auth"
	"booking-app/internal/app/http/middleware"
	"booking-app/internal/errutil"
)

// Handler serves profile lookups.
type Handler struct {
	svc    *authsvc.Service
	logger *slog.Logger
}

func NewHandler(svc *authsvc.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	email := c.GetString(middleware.ContextEmail)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), email)
	if err != nil {
		if authsvc.KindOf(err) == authsvc.KindNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		errutil.LogError(c.Request.Context(), h.logger, "profile lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	claims, _ := c.Get(middleware.ContextClaims)
	c.JSON(http.StatusOK, gin.H{"user": user, "claims": claims})
}

// POST /userdata
func (h *Handler) UserData(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.Email == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Email is required"})
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), input.Email)
	if err != nil {
		if authsvc.KindOf(err) == authsvc.KindNotFound {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No user exists with this email"})
			return
		}
		errutil.LogError(c.Request.Context(), h.logger, "userdata lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "name": user.Name, "email": user.Email})
}
