package controllers

import (
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/services/compat"
	"Playnet/services/redis"
	"Playnet/utils"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Cached reports stay fresh this long before the libraries are re-scored.
const compatCacheTTL = 10 * time.Minute

// ownedGames loads a user's owned library mapped to the scorer's shape.
func ownedGames(db *gorm.DB, username string) ([]compat.Game, error) {
	var records []models.GameRecord
	if err := db.Where("owner_username = ? AND status = ?",
		username, models.GameStatusOwned).Find(&records).Error; err != nil {
		return nil, err
	}
	games := make([]compat.Game, len(records))
	for i := range records {
		games[i] = compat.Game{
			CatalogID: records[i].CatalogID,
			Name:      records[i].Name,
			Platform:  records[i].Platform,
			Genres:    records[i].GenreList(),
			Rating:    records[i].Rating,
			Favorite:  records[i].Favorite,
		}
	}
	return games, nil
}

// @Summary Compare game libraries
// @Description Scores the caller's owned library against another user's and
// returns the full compatibility report. Reports are cached per pair.
// @Tags compatibility
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username path string true "User to compare with"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/compatibility/{username} [get]
// @Security ApiKeyAuth
func GetCompatibilityReport(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
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

		other := c.Param("username")
		if other == user.ProfileUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot compare with yourself."})
			return
		}

		var otherProfile models.GameProfile
		if err := db.Where("username = ?", other).First(&otherProfile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "That user does not exist"})
			return
		}

		if redisClient != nil {
			if cached, err := redisClient.GetCachedCompatibilityReport(user.ProfileUsername, other); err == nil && cached != nil {
				var report compat.Report
				if err := json.Unmarshal(cached, &report); err == nil {
					c.JSON(http.StatusOK, gin.H{
						"first":  user.ProfileUsername,
						"second": other,
						"report": report,
						"cached": true,
					})
					return
				}
			}
		}

		first, err := ownedGames(db, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading libraries"})
			return
		}
		second, err := ownedGames(db, other)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading libraries"})
			return
		}

		report := compat.Compare(first, second)

		if redisClient != nil {
			if raw, err := json.Marshal(report); err == nil {
				if err := redisClient.CacheCompatibilityReport(user.ProfileUsername, other, raw, compatCacheTTL); err != nil {
					log.Printf("Error caching compatibility report: %v", err)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"first":  user.ProfileUsername,
			"second": other,
			"report": report,
			"cached": false,
		})
	}
}
