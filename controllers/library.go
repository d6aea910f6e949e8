package controllers

import (
	"Playnet/constants/platforms"
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/utils"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// gameRecordInput is the JSON body for adding or updating a library entry.
type gameRecordInput struct {
	CatalogID *int64   `json:"catalog_id"`
	Name      string   `json:"name"`
	Platform  string   `json:"platform"`
	Genres    []string `json:"genres"`
	Status    string   `json:"status"`
	Rating    *int     `json:"rating"`
	Favorite  *bool    `json:"favorite"`
}

func recordResponse(record *models.GameRecord) gin.H {
	return gin.H{
		"id":         record.ID,
		"catalog_id": record.CatalogID,
		"name":       record.Name,
		"platform":   record.Platform,
		"genres":     record.GenreList(),
		"status":     record.Status,
		"rating":     record.Rating,
		"favorite":   record.Favorite,
		"added_at":   record.CreatedAt,
	}
}

// @Summary Add a game to the library
// @Description Adds a game record. Catalog-identified duplicates on the same
// platform are rejected; a same name+platform match without catalog ids only
// produces a warning in the response.
// @Tags library
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game body gameRecordInput true "Game to add"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/library [post]
// @Security ApiKeyAuth
func AddGameRecord(db *gorm.DB) gin.HandlerFunc {
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

		var input gameRecordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		input.Name = strings.TrimSpace(input.Name)
		input.Platform = strings.ToLower(strings.TrimSpace(input.Platform))
		if input.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game name is required"})
			return
		}
		if !platforms.IsValid(input.Platform) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform"})
			return
		}
		if input.Status == "" {
			input.Status = models.GameStatusOwned
		}
		if !models.ValidGameStatus(input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
			return
		}
		if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 10) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 0 and 10"})
			return
		}

		if input.CatalogID != nil {
			var count int64
			db.Model(&models.GameRecord{}).
				Where("owner_username = ? AND catalog_id = ? AND platform = ?",
					user.ProfileUsername, *input.CatalogID, input.Platform).
				Count(&count)
			if count > 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "This game is already in your library"})
				return
			}
		}

		// No catalog id: a same name+platform entry is suspicious but not
		// forbidden, surface it as a warning only
		warning := ""
		if input.CatalogID == nil {
			var count int64
			db.Model(&models.GameRecord{}).
				Where("owner_username = ? AND LOWER(name) = ? AND platform = ?",
					user.ProfileUsername, strings.ToLower(input.Name), input.Platform).
				Count(&count)
			if count > 0 {
				warning = "A game with the same name and platform is already in your library"
			}
		}

		record := models.GameRecord{
			OwnerUsername: user.ProfileUsername,
			CatalogID:     input.CatalogID,
			Name:          input.Name,
			Platform:      input.Platform,
			Status:        input.Status,
			Rating:        input.Rating,
		}
		if input.Favorite != nil {
			record.Favorite = *input.Favorite
		}
		record.SetGenres(input.Genres)

		if err := db.Create(&record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding game"})
			return
		}

		response := gin.H{"message": "Game added", "game": recordResponse(&record)}
		if warning != "" {
			response["warning"] = warning
		}
		c.JSON(http.StatusCreated, response)
	}
}

// @Summary List a user's library
// @Description Returns the game records of any user, optionally filtered by
// status and platform.
// @Tags library
// @Produce json
// @Param username path string true "Username"
// @Param status query string false "Filter by status"
// @Param platform query string false "Filter by platform"
// @Success 200 {array} map[string]interface{}
// @Failure 404 {object} object{error=string}
// @Router /users/{username}/library [get]
func ListGameRecords(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		var profile models.GameProfile
		if err := db.Where("username = ?", username).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		query := db.Where("owner_username = ?", username)
		if status := c.Query("status"); status != "" {
			if !models.ValidGameStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
				return
			}
			query = query.Where("status = ?", status)
		}
		if platform := strings.ToLower(c.Query("platform")); platform != "" {
			if !platforms.IsValid(platform) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform"})
				return
			}
			query = query.Where("platform = ?", platform)
		}

		var records []models.GameRecord
		if err := query.Order("name ASC").Find(&records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching library"})
			return
		}

		response := make([]gin.H, len(records))
		for i := range records {
			response[i] = recordResponse(&records[i])
		}
		c.JSON(http.StatusOK, response)
	}
}

// loadOwnRecord resolves a library entry and checks it belongs to the caller.
func loadOwnRecord(c *gin.Context, db *gorm.DB, owner string) (*models.GameRecord, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game id"})
		return nil, false
	}

	var record models.GameRecord
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return nil, false
	}
	if record.OwnerUsername != owner {
		c.JSON(http.StatusForbidden, gin.H{"error": "This game is not in your library"})
		return nil, false
	}
	return &record, true
}

// @Summary Update a library entry
// @Description Updates status, rating, favorite flag or genres of one of the
// user's own game records.
// @Tags library
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Game record id"
// @Param game body gameRecordInput true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/library/{id} [patch]
// @Security ApiKeyAuth
func UpdateGameRecord(db *gorm.DB) gin.HandlerFunc {
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

		record, ok := loadOwnRecord(c, db, user.ProfileUsername)
		if !ok {
			return
		}

		var input gameRecordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if input.Status != "" {
			if !models.ValidGameStatus(input.Status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
				return
			}
			record.Status = input.Status
		}
		if input.Rating != nil {
			if *input.Rating < 0 || *input.Rating > 10 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 0 and 10"})
				return
			}
			record.Rating = input.Rating
		}
		if input.Favorite != nil {
			record.Favorite = *input.Favorite
		}
		if input.Genres != nil {
			record.SetGenres(input.Genres)
		}

		if err := db.Save(record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating game"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Game updated", "game": recordResponse(record)})
	}
}

// @Summary Remove a game from the library
// @Tags library
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path integer true "Game record id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/library/{id} [delete]
// @Security ApiKeyAuth
func DeleteGameRecord(db *gorm.DB) gin.HandlerFunc {
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

		record, ok := loadOwnRecord(c, db, user.ProfileUsername)
		if !ok {
			return
		}

		if err := db.Delete(record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting game"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Game removed from library"})
	}
}
