package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authsvc "booking-app/internal/auth"
	"booking-app/internal/errutil"
	"booking-app/internal/metrics"
)

// Handler serves the register, login and password reset endpoints.
type Handler struct {
	svc     *authsvc.Service
	logger  *slog.Logger
	metrics *metrics.Metrics

	// hideUnknownEmail makes forget-password answer unknown emails like known ones.
	hideUnknownEmail bool
}

func NewHandler(svc *authsvc.Service, logger *slog.Logger, m *metrics.Metrics, hideUnknownEmail bool) *Handler {
	return &Handler{
		svc:              svc,
		logger:           logger,
		metrics:          m,
		hideUnknownEmail: hideUnknownEmail,
	}
}

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.svc.Register(c.Request.Context(), authsvc.RegisterInput{
		Email:    input.Email,
		Name:     input.Name,
		Password: input.Password,
		Role:     input.Role,
	})
	h.record("register", err)
	if err != nil {
		switch authsvc.KindOf(err) {
		case authsvc.KindConflict:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		case authsvc.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.internalError(c, "register failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Account created successfully!", "user": user})
}

// POST /login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	res, err := h.svc.Login(c.Request.Context(), input.Email, input.Password)
	h.record("login", err)
	if err != nil {
		if authsvc.KindOf(err) == authsvc.KindUnauthorized {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Wrong email or password"})
			return
		}
		h.internalError(c, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email": res.User.Email,
		"user":  res.Token,
		"role":  res.User.Role,
	})
}

// POST /forget-password
func (h *Handler) ForgetPassword(c *gin.Context) {
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

	err := h.svc.RequestPasswordReset(c.Request.Context(), input.Email)
	h.record("reset_request", err)
	switch {
	case err == nil:
	case authsvc.KindOf(err) == authsvc.KindNotFound:
		if !h.hideUnknownEmail {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No user exists with this email"})
			return
		}
	case authsvc.KindOf(err) == authsvc.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	default:
		h.internalError(c, "password reset request failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Please check your email"})
}

// GET /verify-token?token=
func (h *Handler) VerifyToken(c *gin.Context) {
	err := h.svc.VerifyResetToken(c.Request.Context(), c.Query("token"))
	h.record("reset_verify", err)
	if err != nil {
		if authsvc.KindOf(err) == authsvc.KindNotFound {
			c.JSON(http.StatusOK, gin.H{"success": false, "msg": "This link has been expired"})
			return
		}
		h.internalError(c, "reset token verification failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "This token still valid"})
}

// POST /reset-password?token=
func (h *Handler) ResetPassword(c *gin.Context) {
	var input struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid request body"})
		return
	}

	user, err := h.svc.CompletePasswordReset(c.Request.Context(), c.Query("token"), input.Password, input.ConfirmPassword)
	h.record("reset_complete", err)
	if err != nil {
		switch authsvc.KindOf(err) {
		case authsvc.KindNotFound:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "This link has been expired"})
		case authsvc.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": err.Error()})
		default:
			h.internalError(c, "password reset failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"msg":      "Your password has been reset",
		"userData": user,
	})
}

func (h *Handler) record(event string, err error) {
	if err == nil {
		h.metrics.AuthEvent(event, "ok")
		return
	}
	h.metrics.AuthEvent(event, authsvc.KindOf(err).String())
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	errutil.LogError(c.Request.Context(), h.logger, msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
