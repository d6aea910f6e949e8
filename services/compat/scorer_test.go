package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func catalogID(id int64) *int64 { return &id }
func rating(r int) *int         { return &r }

func TestCompareEmptyLibraries(t *testing.T) {
	halo := Game{CatalogID: catalogID(1), Name: "Halo", Platform: "xbox", Genres: []string{"Shooter"}}

	for name, tc := range map[string]struct {
		first, second []Game
	}{
		"both empty":   {nil, nil},
		"first empty":  {nil, []Game{halo}},
		"second empty": {[]Game{halo}, nil},
	} {
		t.Run(name, func(t *testing.T) {
			report := Compare(tc.first, tc.second)
			assert.Equal(t, 0.0, report.Score)
			assert.Equal(t, RatingNoData, report.Rating)
			assert.Equal(t, len(tc.first), report.TotalFirst)
			assert.Equal(t, len(tc.second), report.TotalSecond)
			assert.Empty(t, report.SharedGames)
			assert.Empty(t, report.Recommendations)
		})
	}
}

func TestCompareIdenticalSingleGame(t *testing.T) {
	library := []Game{{CatalogID: catalogID(1), Name: "Halo", Platform: "xbox", Genres: []string{"Shooter"}}}

	report := Compare(library, library)

	assert.Equal(t, 1, report.SharedCount)
	assert.Equal(t, 100.0, report.BaseScore)
	// Single-element sets, both Jaccard indexes are 1
	assert.Equal(t, 10.0, report.PlatformBoost)
	assert.Equal(t, 15.0, report.GenreBoost)
	// Clamped despite base + boosts exceeding 100
	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, RatingExcellent, report.Rating)
	assert.Equal(t, []string{"Halo"}, report.SharedGames)
	assert.Empty(t, report.UniqueToFirst)
	assert.Empty(t, report.UniqueToSecond)
}

func TestCompareDisjointLibraries(t *testing.T) {
	first := []Game{
		{CatalogID: catalogID(1), Name: "Halo", Platform: "xbox", Genres: []string{"Shooter"}},
		{CatalogID: catalogID(2), Name: "Forza", Platform: "xbox", Genres: []string{"Racing"}},
	}
	second := []Game{
		{CatalogID: catalogID(3), Name: "Gran Turismo", Platform: "playstation", Genres: []string{"Racing"}},
	}

	report := Compare(first, second)

	assert.Equal(t, 0, report.SharedCount)
	assert.Equal(t, 0.0, report.BaseScore)
	// Score is exactly the boosts when nothing is shared
	assert.Equal(t, report.Score, round1(report.PlatformBoost+report.GenreBoost))
	// Platforms disjoint, genres overlap on Racing: 1/2 * 15
	assert.Equal(t, 0.0, report.PlatformBoost)
	assert.Equal(t, 7.5, report.GenreBoost)
}

func TestCompareIsSymmetric(t *testing.T) {
	first := []Game{
		{CatalogID: catalogID(1), Name: "Halo", Platform: "xbox", Genres: []string{"Shooter", "Sci-Fi"}},
		{Name: "Stardew Valley", Platform: "pc", Genres: []string{"Farming"}},
		{CatalogID: catalogID(9), Name: "Celeste", Platform: "switch", Genres: []string{"Platformer"}},
	}
	second := []Game{
		{CatalogID: catalogID(1), Name: "Halo", Platform: "xbox", Genres: []string{"Shooter"}},
		{Name: "stardew valley", Platform: "pc", Genres: []string{"Farming", "RPG"}},
	}

	ab := Compare(first, second)
	ba := Compare(second, first)

	assert.Equal(t, ab.BaseScore, ba.BaseScore)
	assert.Equal(t, ab.PlatformBoost, ba.PlatformBoost)
	assert.Equal(t, ab.GenreBoost, ba.GenreBoost)
	assert.Equal(t, ab.Score, ba.Score)
	assert.Equal(t, ab.Rating, ba.Rating)
	assert.Equal(t, ab.SharedCount, ba.SharedCount)
}

func TestNameFallbackMatching(t *testing.T) {
	// No catalog ids anywhere, lowercased names decide
	first := []Game{{Name: "Stardew Valley", Platform: "pc"}}
	second := []Game{{Name: "STARDEW VALLEY", Platform: "switch"}}

	report := Compare(first, second)

	assert.Equal(t, 1, report.SharedCount)
	assert.Equal(t, 100.0, report.BaseScore)
}

func TestCatalogIDTakesPriorityOverName(t *testing.T) {
	// Same name but one side carries an id: the id side cannot fall back to
	// name matching, so nothing is shared.
	first := []Game{{CatalogID: catalogID(7), Name: "Halo", Platform: "xbox"}}
	second := []Game{{Name: "Halo", Platform: "xbox"}}

	report := Compare(first, second)

	assert.Equal(t, 0, report.SharedCount)
	assert.Equal(t, 0.0, report.BaseScore)
}

func TestRecommendations(t *testing.T) {
	first := []Game{{CatalogID: catalogID(1), Name: "Halo", Platform: "xbox"}}
	second := []Game{
		{CatalogID: catalogID(1), Name: "Halo", Platform: "xbox"},
		{CatalogID: catalogID(2), Name: "Hades", Platform: "pc", Rating: rating(9)},
		{CatalogID: catalogID(3), Name: "Filler", Platform: "pc", Rating: rating(4)},
		{CatalogID: catalogID(4), Name: "Hollow Knight", Platform: "switch", Rating: rating(8), Favorite: true},
		{CatalogID: catalogID(5), Name: "Old Favorite", Platform: "pc", Favorite: true},
	}

	report := Compare(first, second)

	// Shared Halo excluded, low-rated non-favorite excluded
	names := make([]string, 0, len(report.Recommendations))
	for _, r := range report.Recommendations {
		names = append(names, r.Name)
	}
	// Hollow Knight 8+2 outranks Hades 9, favorite-only game trails at 0+2
	assert.Equal(t, []string{"Hollow Knight", "Hades", "Old Favorite"}, names)
	assert.Equal(t, "Nintendo Switch", report.Recommendations[0].Platform)
}

func TestRecommendationsCappedAtFive(t *testing.T) {
	first := []Game{{CatalogID: catalogID(100), Name: "Solo", Platform: "pc"}}
	var second []Game
	for i := int64(1); i <= 8; i++ {
		second = append(second, Game{
			CatalogID: catalogID(i),
			Name:      string(rune('A' + i)),
			Platform:  "pc",
			Rating:    rating(9),
		})
	}

	report := Compare(first, second)
	assert.Len(t, report.Recommendations, 5)
}

func TestGenreBreakdownTopTen(t *testing.T) {
	genres := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	first := []Game{{CatalogID: catalogID(1), Name: "Everything", Platform: "pc", Genres: genres}}
	second := []Game{{CatalogID: catalogID(2), Name: "Shooters", Platform: "pc", Genres: []string{"a", "a", "b"}}}

	report := Compare(first, second)

	assert.Len(t, report.Genres, 10)
	// "a" has combined count 3 and leads the breakdown
	assert.Equal(t, "a", report.Genres[0].Genre)
	assert.Equal(t, 3, report.Genres[0].Combined)
}

func TestUniqueSamplesCappedAtTen(t *testing.T) {
	var first []Game
	for i := int64(0); i < 15; i++ {
		first = append(first, Game{CatalogID: catalogID(i), Name: "Game", Platform: "pc"})
	}
	second := []Game{{CatalogID: catalogID(100), Name: "Other", Platform: "pc"}}

	report := Compare(first, second)
	assert.Len(t, report.UniqueToFirst, 10)
}

func TestRatingLabels(t *testing.T) {
	for _, tc := range []struct {
		score float64
		label string
	}{
		{100, RatingExcellent},
		{80, RatingExcellent},
		{79.9, RatingGreat},
		{60, RatingGreat},
		{40, RatingGood},
		{20, RatingFair},
		{0.1, RatingLimited},
		{0, RatingNone},
	} {
		assert.Equal(t, tc.label, ratingLabel(tc.score), "score %v", tc.score)
	}
}
