package handlers

import (
	"net/http"

	"uat-portal-api/internal/database"
	"uat-portal-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserResponse is the safe user payload without credentials
type UserResponse struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Country  string      `json:"country,omitempty"`
}

// CreateUserRequest represents the admin user-creation payload
type CreateUserRequest struct {
	Username string      `json:"username" binding:"required"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role"`
	Country  string      `json:"country"`
}

// GetAllUsers returns all users (protected)
// GET /api/users
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
			Country:  u.Country,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// CreateUser handles POST /api/users (admin)
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStakeholder
	}
	if role != models.RoleAdmin && role != models.RoleStakeholder {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}
	if role == models.RoleStakeholder && req.Country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country is required for stakeholders"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Password: string(hash),
		Role:     role,
		Country:  req.Country,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Country:  user.Country,
	})
}
