package handlers

import (
	"errors"
	"net/http"

	"uat-portal-api/internal/auth"
	"uat-portal-api/internal/cooldown"
	"uat-portal-api/internal/database"
	"uat-portal-api/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// loginLimiter throttles repeated failed logins per username.
var loginLimiter *cooldown.Limiter

// SetLoginLimiter installs the login-failure limiter; call at startup.
func SetLoginLimiter(l *cooldown.Limiter) {
	loginLimiter = l
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string      `json:"token"`
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Country  string      `json:"country,omitempty"`
	Message  string      `json:"message"`
}

// Login handles the login endpoint
// POST /api/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	if loginLimiter != nil && loginLimiter.Blocked(req.Username) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many failed attempts. Try again later.",
		})
		return
	}

	var user models.User
	err := database.GetDB().Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if loginLimiter != nil {
				loginLimiter.Fail(req.Username)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		}
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		if loginLimiter != nil {
			loginLimiter.Fail(req.Username)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if loginLimiter != nil {
		loginLimiter.Reset(req.Username)
	}

	token, err := auth.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Country:  user.Country,
		Message:  "Login successful",
	})
}
