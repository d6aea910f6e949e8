package compat

import (
	"Playnet/constants/platforms"
	"math"
	"sort"
	"strings"
)

/**
 * Library compatibility scorer. Pure computation over two users' owned-game
 * collections: a Dice-style overlap base score plus Jaccard boosts for
 * platform and genre taste, reported together with shared/unique samples,
 * breakdowns and recommendations.
 */

const (
	maxUniqueSamples   = 10
	maxGenreBreakdown  = 10
	maxRecommendations = 5

	// A game is recommendable when rated at least this or marked favorite
	recommendationMinRating = 7
	favoriteBonus           = 2

	platformBoostMax = 10.0
	genreBoostMax    = 15.0
)

// Rating labels by score threshold.
const (
	RatingExcellent = "Excellent Match"
	RatingGreat     = "Great Match"
	RatingGood      = "Good Match"
	RatingFair      = "Fair Match"
	RatingLimited   = "Limited Match"
	RatingNone      = "No Match"
	RatingNoData    = "No Data"
)

// Game is one owned title as the scorer sees it. CatalogID is the external
// catalog identifier and may be absent for manually added games.
type Game struct {
	CatalogID *int64   `json:"catalog_id"`
	Name      string   `json:"name"`
	Platform  string   `json:"platform"`
	Genres    []string `json:"genres"`
	Rating    *int     `json:"rating"`
	Favorite  bool     `json:"favorite"`
}

// PlatformCount is one row of the per-platform breakdown.
type PlatformCount struct {
	Platform    string `json:"platform"`
	DisplayName string `json:"display_name"`
	First       int    `json:"first"`
	Second      int    `json:"second"`
}

// GenreCount is one row of the per-genre breakdown.
type GenreCount struct {
	Genre    string `json:"genre"`
	First    int    `json:"first"`
	Second   int    `json:"second"`
	Combined int    `json:"combined"`
}

// Recommendation is a display-ready suggestion taken from the second user's
// library.
type Recommendation struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Rating   int    `json:"rating"`
	Favorite bool   `json:"favorite"`
}

// Report is the full symmetric comparison result.
type Report struct {
	Score         float64 `json:"score"`
	Rating        string  `json:"rating"`
	BaseScore     float64 `json:"base_score"`
	PlatformBoost float64 `json:"platform_boost"`
	GenreBoost    float64 `json:"genre_boost"`

	SharedCount int `json:"shared_count"`
	TotalFirst  int `json:"total_first"`
	TotalSecond int `json:"total_second"`

	SharedGames    []string `json:"shared_games"`
	UniqueToFirst  []string `json:"unique_to_first"`
	UniqueToSecond []string `json:"unique_to_second"`

	Platforms       []PlatformCount  `json:"platforms"`
	Genres          []GenreCount     `json:"genres"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Compare scores two owned-game collections against each other. Both inputs
// are expected to be pre-filtered to ownership status "owned". An empty
// collection on either side short-circuits to the zero "No Data" report.
func Compare(first, second []Game) Report {
	if len(first) == 0 || len(second) == 0 {
		return Report{
			Rating:      RatingNoData,
			TotalFirst:  len(first),
			TotalSecond: len(second),
		}
	}

	sharedFirst := markShared(first, second)
	sharedSecond := markShared(second, first)

	report := Report{
		TotalFirst:  len(first),
		TotalSecond: len(second),
	}

	for i, g := range first {
		if sharedFirst[i] {
			report.SharedCount++
			report.SharedGames = append(report.SharedGames, g.Name)
		} else if len(report.UniqueToFirst) < maxUniqueSamples {
			report.UniqueToFirst = append(report.UniqueToFirst, g.Name)
		}
	}
	for i, g := range second {
		if !sharedSecond[i] && len(report.UniqueToSecond) < maxUniqueSamples {
			report.UniqueToSecond = append(report.UniqueToSecond, g.Name)
		}
	}

	report.BaseScore = round1(float64(2*report.SharedCount) / float64(len(first)+len(second)) * 100)
	report.PlatformBoost = round1(platformJaccard(first, second) * platformBoostMax)
	report.GenreBoost = round1(genreJaccard(first, second) * genreBoostMax)

	report.Score = round1(math.Min(100, report.BaseScore+report.PlatformBoost+report.GenreBoost))
	report.Rating = ratingLabel(report.Score)

	report.Platforms = platformBreakdown(first, second)
	report.Genres = genreBreakdown(first, second)
	report.Recommendations = recommend(second, sharedSecond)

	return report
}

// markShared flags which games of side are also present in other. Catalog id
// match wins; the lowercased-name fallback only applies between games that
// carry no id on either side.
func markShared(side, other []Game) []bool {
	otherIDs := make(map[int64]bool)
	otherNamesNoID := make(map[string]bool)
	for _, g := range other {
		if g.CatalogID != nil {
			otherIDs[*g.CatalogID] = true
		} else {
			otherNamesNoID[strings.ToLower(g.Name)] = true
		}
	}

	shared := make([]bool, len(side))
	for i, g := range side {
		if g.CatalogID != nil {
			shared[i] = otherIDs[*g.CatalogID]
		} else {
			shared[i] = otherNamesNoID[strings.ToLower(g.Name)]
		}
	}
	return shared
}

// platformJaccard is intersection over union of the two distinct platform
// sets.
func platformJaccard(first, second []Game) float64 {
	set1 := make(map[string]bool)
	set2 := make(map[string]bool)
	for _, g := range first {
		set1[g.Platform] = true
	}
	for _, g := range second {
		set2[g.Platform] = true
	}

	intersection := 0
	for p := range set1 {
		if set2[p] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// genreJaccard runs the same formula over genre multisets: a genre tag
// appearing on several games (or repeated on one) counts every time.
func genreJaccard(first, second []Game) float64 {
	count1 := genreCounts(first)
	count2 := genreCounts(second)

	intersection := 0
	union := 0
	for genre, n1 := range count1 {
		n2 := count2[genre]
		if n1 < n2 {
			intersection += n1
		} else {
			intersection += n2
		}
		if n1 > n2 {
			union += n1
		} else {
			union += n2
		}
	}
	for genre, n2 := range count2 {
		if _, seen := count1[genre]; !seen {
			union += n2
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func genreCounts(games []Game) map[string]int {
	counts := make(map[string]int)
	for _, g := range games {
		for _, genre := range g.Genres {
			counts[strings.ToLower(genre)]++
		}
	}
	return counts
}

func platformBreakdown(first, second []Game) []PlatformCount {
	count1 := make(map[string]int)
	count2 := make(map[string]int)
	for _, g := range first {
		count1[g.Platform]++
	}
	for _, g := range second {
		count2[g.Platform]++
	}

	seen := make(map[string]bool)
	var rows []PlatformCount
	for _, counts := range []map[string]int{count1, count2} {
		for p := range counts {
			if seen[p] {
				continue
			}
			seen[p] = true
			rows = append(rows, PlatformCount{
				Platform:    p,
				DisplayName: platforms.DisplayName(p),
				First:       count1[p],
				Second:      count2[p],
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Platform < rows[j].Platform })
	return rows
}

func genreBreakdown(first, second []Game) []GenreCount {
	count1 := genreCounts(first)
	count2 := genreCounts(second)

	seen := make(map[string]bool)
	var rows []GenreCount
	for _, counts := range []map[string]int{count1, count2} {
		for genre := range counts {
			if seen[genre] {
				continue
			}
			seen[genre] = true
			rows = append(rows, GenreCount{
				Genre:    genre,
				First:    count1[genre],
				Second:   count2[genre],
				Combined: count1[genre] + count2[genre],
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Combined != rows[j].Combined {
			return rows[i].Combined > rows[j].Combined
		}
		return rows[i].Genre < rows[j].Genre
	})
	if len(rows) > maxGenreBreakdown {
		rows = rows[:maxGenreBreakdown]
	}
	return rows
}

// recommend picks the second user's best unique games: rated highly or
// favorited, heaviest first.
func recommend(second []Game, shared []bool) []Recommendation {
	type weighted struct {
		game   Game
		weight int
	}
	var candidates []weighted
	for i, g := range second {
		if shared[i] {
			continue
		}
		rating := 0
		if g.Rating != nil {
			rating = *g.Rating
		}
		if rating < recommendationMinRating && !g.Favorite {
			continue
		}
		weight := rating
		if g.Favorite {
			weight += favoriteBonus
		}
		candidates = append(candidates, weighted{game: g, weight: weight})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight > candidates[j].weight
		}
		return candidates[i].game.Name < candidates[j].game.Name
	})
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		rating := 0
		if c.game.Rating != nil {
			rating = *c.game.Rating
		}
		recs = append(recs, Recommendation{
			Name:     c.game.Name,
			Platform: platforms.DisplayName(c.game.Platform),
			Rating:   rating,
			Favorite: c.game.Favorite,
		})
	}
	return recs
}

func ratingLabel(score float64) string {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGreat
	case score >= 40:
		return RatingGood
	case score >= 20:
		return RatingFair
	case score > 0:
		return RatingLimited
	default:
		return RatingNone
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
