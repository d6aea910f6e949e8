package controllers

import (
	"Playnet/constants/platforms"
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/utils"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// @Summary Create a new account
// @Description Registers a user with email, username and password. The
// username becomes the public game profile.
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param username formData string true "Public username"
// @Param password formData string true "Password"
// @Param full_name formData string false "Full name"
// @Success 201 {object} object{message=string,username=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /signup [post]
func SignUp(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.PostForm("email"))
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")

		if email == "" || username == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email, username and password are required"})
			return
		}

		var existing models.User
		if result := db.Where("email = ? OR profile_username = ?", email, username).First(&existing); result.RowsAffected > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Email or username already in use"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			profile := models.GameProfile{Username: username}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			user := models.User{
				Email:           email,
				ProfileUsername: username,
				PasswordHash:    string(hash),
				FullName:        strings.TrimSpace(c.PostForm("full_name")),
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating account"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Account created", "username": username})
	}
}

// @Summary Log in
// @Description Validates credentials, opens a cookie session and returns a
// bearer token for API clients.
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} object{token=string,username=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /login [post]
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email := c.PostForm("email")
		password := c.PostForm("password")

		// Minimum input sanitizing
		if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}

		token, err := middleware.GenerateJWT(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
			return
		}

		session.Set("Email", user.Email)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "username": user.ProfileUsername})
	}
}

// @Summary Log out
// @Description Deletes the session associated with the Email key.
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /logout [post]
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	user := session.Get("Email")
	// There is no session for the user, won't delete nothing
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session token"})
		return
	}

	session.Delete("Email")
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Get the authenticated user's private info
// @Description Returns the account plus the game profile, gamertags included.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/me [get]
// @Security ApiKeyAuth
func GetUserPrivateInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var user models.User
		if err := db.Preload("GameProfile.Gamertags").Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		gamertags := make([]gin.H, 0, len(user.GameProfile.Gamertags))
		for _, tag := range user.GameProfile.Gamertags {
			gamertags = append(gamertags, gin.H{"platform": tag.Platform, "tag": tag.Tag})
		}

		c.JSON(http.StatusOK, gin.H{
			"email":        user.Email,
			"username":     user.ProfileUsername,
			"full_name":    user.FullName,
			"member_since": user.MemberSince,
			"bio":          user.GameProfile.Bio,
			"icon":         user.GameProfile.UserIcon,
			"gamertags":    gamertags,
		})
	}
}

// @Summary Update profile info
// @Description Updates bio, icon and full name of the authenticated user.
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param bio formData string false "Profile bio"
// @Param icon formData integer false "Icon index"
// @Param full_name formData string false "Full name"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/me [patch]
// @Security ApiKeyAuth
func UpdateUserInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		if fullName, ok := c.GetPostForm("full_name"); ok {
			user.FullName = strings.TrimSpace(fullName)
			if err := db.Save(user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating user"})
				return
			}
		}

		profileUpdates := map[string]interface{}{}
		if bio, ok := c.GetPostForm("bio"); ok {
			profileUpdates["bio"] = bio
		}
		if raw, ok := c.GetPostForm("icon"); ok {
			icon, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Icon must be a number"})
				return
			}
			profileUpdates["user_icon"] = icon
		}
		if len(profileUpdates) > 0 {
			if err := db.Model(&models.GameProfile{}).
				Where("username = ?", user.ProfileUsername).
				Updates(profileUpdates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating profile"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
	}
}

// @Summary Get a user's public profile
// @Description Returns the public profile of any user: bio, icon, gamertags
// and library size.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} object{error=string}
// @Router /users/{username} [get]
func GetUserPublicInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		var profile models.GameProfile
		if err := db.Preload("Gamertags").Where("username = ?", username).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		gamertags := make([]gin.H, 0, len(profile.Gamertags))
		for _, tag := range profile.Gamertags {
			gamertags = append(gamertags, gin.H{"platform": tag.Platform, "tag": tag.Tag})
		}

		var librarySize int64
		db.Model(&models.GameRecord{}).Where("owner_username = ?", username).Count(&librarySize)

		c.JSON(http.StatusOK, gin.H{
			"username":     profile.Username,
			"bio":          profile.Bio,
			"icon":         profile.UserIcon,
			"gamertags":    gamertags,
			"library_size": librarySize,
		})
	}
}

// @Summary Search users
// @Description Case-insensitive prefix search over public usernames.
// @Tags users
// @Produce json
// @Param q query string true "Username prefix"
// @Success 200 {array} object{username=string,icon=integer}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /users [get]
func SearchUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
			return
		}

		var profiles []models.GameProfile
		if err := db.Where("LOWER(username) LIKE ?", strings.ToLower(query)+"%").
			Limit(20).Find(&profiles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching users"})
			return
		}

		results := make([]gin.H, len(profiles))
		for i, profile := range profiles {
			results[i] = gin.H{"username": profile.Username, "icon": profile.UserIcon}
		}
		c.JSON(http.StatusOK, results)
	}
}

// @Summary Set a gamertag
// @Description Creates or replaces the user's gamertag on one platform.
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param platform formData string true "Platform (pc, playstation, xbox, switch, mobile)"
// @Param tag formData string true "Gamertag"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/gamertags [put]
// @Security ApiKeyAuth
func SetGamertag(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		platform := strings.ToLower(strings.TrimSpace(c.PostForm("platform")))
		tag := strings.TrimSpace(c.PostForm("tag"))
		if !platforms.IsValid(platform) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform"})
			return
		}
		if tag == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tag can't be empty"})
			return
		}

		// One gamertag per platform: replace in place when it already exists
		var existing models.Gamertag
		result := db.Where("username = ? AND platform = ?", user.ProfileUsername, platform).First(&existing)
		if result.Error == nil {
			existing.Tag = tag
			if err := db.Save(&existing).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating gamertag"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Gamertag updated"})
			return
		}
		if result.Error != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading gamertags"})
			return
		}

		gamertag := models.Gamertag{
			Username: user.ProfileUsername,
			Platform: platform,
			Tag:      tag,
		}
		if err := db.Create(&gamertag).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving gamertag"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Gamertag saved"})
	}
}

// @Summary Remove a gamertag
// @Description Deletes the user's gamertag on one platform.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param platform path string true "Platform"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/gamertags/{platform} [delete]
// @Security ApiKeyAuth
func DeleteGamertag(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		user, err := utils.UserByEmail(db, email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		platform := strings.ToLower(c.Param("platform"))
		result := db.Where("username = ? AND platform = ?", user.ProfileUsername, platform).
			Delete(&models.Gamertag{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting gamertag"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No gamertag on that platform"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Gamertag removed"})
	}
}
