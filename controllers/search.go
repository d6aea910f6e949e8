package controllers

import (
	"Playnet/services/catalog"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// @Summary Search the game catalog
// @Description Proxies a free-text search to the external game catalog. The
// returned hits carry the catalog id the library endpoints expect.
// @Tags search
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param q query string true "Search query"
// @Success 200 {array} catalog.Game
// @Failure 400 {object} object{error=string}
// @Failure 502 {object} object{error=string}
// @Router /auth/catalog [get]
// @Security ApiKeyAuth
func SearchCatalog(catalogClient *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
			return
		}

		games, err := catalogClient.Search(c.Request.Context(), query)
		if err != nil {
			log.Printf("Catalog search failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Game search is unavailable right now"})
			return
		}
		c.JSON(http.StatusOK, games)
	}
}
