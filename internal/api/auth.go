package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"storefront/internal/domain"     // Domain errors
	"storefront/internal/middleware" // Session context helpers
	"storefront/internal/service"    // Auth service
	"storefront/internal/session"    // Session boundary

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required"`    // Validated by the auth service
	Password string  `json:"password" binding:"required"` // At least 8 characters
	Name     string  `json:"name" binding:"required"`     // Display name
	Phone    *string `json:"phone"`                       // Optional
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Must be an email address
	Password string `json:"password" binding:"required"`    // Plain password
}

// RegisterHandler creates a registered user. It does not log the user in.
func RegisterHandler(auth *service.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		id, err := auth.Register(c.Request.Context(), service.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Phone:    req.Phone,
		})
		if err != nil {
			respondError(c, log, err, "register")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_id": id})
	}
}

// LoginHandler resolves credentials and starts a session carrying the principal
func LoginHandler(auth *service.AuthService, sessions *session.Manager, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		p, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, domain.ErrAuthentication) {
			// Same answer for unknown email and wrong password
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err != nil {
			respondError(c, log, err, "login")
			return
		}
		if _, err := sessions.Start(c, p); err != nil {
			respondError(c, log, err, "start session")
			return
		}
		// Audit the login
		log.WithFields(logrus.Fields{
			"principal_id": p.ID,                      // Logged-in principal
			"kind":         p.Kind,                    // Administrative or registered
			"request_id":   c.GetString("request_id"), // Correlates with the access log
		}).Info("Login")
		c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": p})
	}
}

// LogoutHandler destroys the session. Logging out without a session succeeds.
func LogoutHandler(sessions *session.Manager, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.End(c); err != nil {
			respondError(c, log, err, "logout")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// SessionHandler reports whether the request carries a live session
func SessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.CurrentSession(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": sess.Principal})
	}
}
