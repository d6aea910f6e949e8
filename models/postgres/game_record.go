package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Ownership statuses for a game record.
const (
	GameStatusOwned     = "owned"
	GameStatusWishlist  = "wishlist"
	GameStatusPlaying   = "playing"
	GameStatusCompleted = "completed"
)

// ValidGameStatus reports whether s is one of the ownership statuses.
func ValidGameStatus(s string) bool {
	switch s {
	case GameStatusOwned, GameStatusWishlist, GameStatusPlaying, GameStatusCompleted:
		return true
	}
	return false
}

/*
 * 'GameRecord' represents one user's relationship to a game title. CatalogID
 * is the external catalog identifier and may be missing for manually added
 * games; in that case name+platform only produce a duplicate warning in the
 * UI, never a hard rejection.
 */
type GameRecord struct {
	ID            uint           `gorm:"primaryKey"`
	OwnerUsername string         `gorm:"size:50;not null;index:idx_game_records_owner;uniqueIndex:idx_game_records_catalog"`
	CatalogID     *int64         `gorm:"uniqueIndex:idx_game_records_catalog"`
	Name          string         `gorm:"size:255;not null"`
	Platform      string         `gorm:"size:20;not null;uniqueIndex:idx_game_records_catalog"`
	Genres        datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Status        string         `gorm:"size:20;not null;default:'owned'"`
	Rating        *int           // 0-10, optional
	Favorite      bool           `gorm:"default:false"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time

	GameProfile GameProfile `gorm:"foreignKey:OwnerUsername;constraint:OnDelete:CASCADE"`
}

// GenreList decodes the jsonb genre array. Malformed or empty payloads come
// back as an empty slice, never an error.
func (g *GameRecord) GenreList() []string {
	var genres []string
	if len(g.Genres) == 0 {
		return genres
	}
	if err := json.Unmarshal(g.Genres, &genres); err != nil {
		return nil
	}
	return genres
}

// SetGenres encodes the genre list into the jsonb column.
func (g *GameRecord) SetGenres(genres []string) {
	if genres == nil {
		genres = []string{}
	}
	raw, err := json.Marshal(genres)
	if err != nil {
		return
	}
	g.Genres = datatypes.JSON(raw)
}
