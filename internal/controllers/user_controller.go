package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ride_pool/internal/config"
	"ride_pool/internal/middleware"
	"ride_pool/internal/models"
)

// GetMe returns the authenticated user's profile.
func GetMe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile modifies the authenticated user's profile fields
func UpdateProfile(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}
		user.Password = hashed
	}

	config.DB.Save(&user)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteProfile removes the authenticated user's account.
func DeleteProfile(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := config.DB.Delete(&models.User{}, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}

// UpdatePhoneNumber sets the caller's phone number. The body carries a
// userId field for compatibility with older clients; the token decides whose
// record changes.
func UpdatePhoneNumber(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var input struct {
		UserID      uint   `json:"userId"`
		PhoneNumber string `json:"phoneNumber" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Phone = input.PhoneNumber
	config.DB.Save(&user)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListUsers is for administrative use.
func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing users: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}
