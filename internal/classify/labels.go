// Package classify runs the optional genre/mood/tag inference over a signal,
// degrading gracefully per dimension when a model artifact is missing.
package classify

// Dimension names double as model artifact basenames: <dimension>.json in the
// configured model directory.
const (
	DimensionGenre = "genre"
	DimensionMood  = "mood"
	DimensionTags  = "tags"
)

// Dimensions lists every classification dimension in a fixed order.
var Dimensions = []string{DimensionGenre, DimensionMood, DimensionTags}

// Label vocabularies, one per dimension. A model artifact must carry exactly
// these labels or it is rejected at load time.
var (
	GenreLabels = []string{"ambient", "classical", "electronic", "hip-hop", "jazz", "metal", "pop", "rock"}
	MoodLabels  = []string{"aggressive", "happy", "party", "relaxed", "sad"}
	TagLabels   = []string{"acoustic", "danceable", "electric", "instrumental", "live", "vocal"}
)

// VocabularyFor returns the fixed label vocabulary for a dimension, or nil
// for an unknown dimension.
func VocabularyFor(dimension string) []string {
	switch dimension {
	case DimensionGenre:
		return GenreLabels
	case DimensionMood:
		return MoodLabels
	case DimensionTags:
		return TagLabels
	default:
		return nil
	}
}
