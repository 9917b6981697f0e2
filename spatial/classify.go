package spatial

import (
	"sort"
	"strings"
)

// roomPattern scores a room type from the object keywords a scene
// description mentions. Higher priority types win ties on keyword count.
type roomPattern struct {
	roomType string
	keywords []string
	priority float64
}

// Ordered slice, not a map, so classification is deterministic.
var roomPatterns = []roomPattern{
	{"kitchen", []string{"stove", "refrigerator", "fridge", "sink", "microwave", "oven", "counter", "cabinet"}, 0.9},
	{"bedroom", []string{"bed", "dresser", "nightstand", "closet", "pillow", "blanket"}, 0.8},
	{"living_room", []string{"couch", "sofa", "tv", "television", "coffee table", "chair", "remote"}, 0.8},
	{"bathroom", []string{"toilet", "shower", "bathtub", "sink", "mirror", "towel"}, 0.9},
	{"dining_room", []string{"dining table", "chairs", "chandelier", "plates"}, 0.7},
	{"office", []string{"desk", "computer", "chair", "bookshelf", "monitor"}, 0.7},
	{"hallway", []string{"narrow", "corridor", "doors", "passage"}, 0.5},
}

var sizeLarge = []string{"large", "spacious", "big"}
var sizeSmall = []string{"small", "compact", "tiny"}

var featureKeywords = []string{"window", "fireplace", "chandelier", "hardwood", "carpet", "tile"}

// SceneFeatures is the structured result of classifying a free-text scene
// description.
type SceneFeatures struct {
	DetectedType string
	Confidence   float64
	Keywords     []string
	SizeClass    string
	Features     []string
}

// ClassifyScene extracts room type, size class, recognized objects and
// distinctive features from a scene description. Descriptions matching no
// pattern come back as "unknown_room" with zero confidence.
func ClassifyScene(description string) SceneFeatures {
	lower := strings.ToLower(description)

	seen := map[string]struct{}{}
	var keywords []string
	bestType := "unknown_room"
	bestScore := 0.0
	for _, pat := range roomPatterns {
		score := 0.0
		for _, kw := range pat.keywords {
			if strings.Contains(lower, kw) {
				score += pat.priority
				if _, dup := seen[kw]; !dup {
					seen[kw] = struct{}{}
					keywords = append(keywords, kw)
				}
			}
		}
		if score > bestScore {
			bestType = pat.roomType
			bestScore = score
		}
	}
	sort.Strings(keywords)

	size := "medium"
	if containsAny(lower, sizeLarge) {
		size = "large"
	} else if containsAny(lower, sizeSmall) {
		size = "small"
	}

	var features []string
	for _, kw := range featureKeywords {
		if strings.Contains(lower, kw) {
			features = append(features, kw)
		}
	}

	return SceneFeatures{
		DetectedType: bestType,
		Confidence:   clamp01(bestScore / 5.0),
		Keywords:     keywords,
		SizeClass:    size,
		Features:     features,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
