package recovery

import "strings"

// BodyPart is a canonical lowercase muscle group key, e.g. "chest" or "hamstrings".
type BodyPart string

// synonyms maps common free-text labels to their canonical body part key.
// Raw labels not present here pass through unchanged (lowercased + trimmed).
var synonyms = map[string]BodyPart{
	"pecs":       "chest",
	"pectorals":  "chest",
	"quads":      "quadriceps",
	"quad":       "quadriceps",
	"hams":       "hamstrings",
	"hamstring":  "hamstrings",
	"glute":      "glutes",
	"abs":        "core",
	"abdominals": "core",
	"stomach":    "core",
	"lats":       "upper back",
	"traps":      "upper back",
	"lower-body": "legs",
	"lower body": "legs",
	"delts":      "shoulders",
	"deltoids":   "shoulders",
	"bicep":      "biceps",
	"tricep":     "triceps",
	"calf":       "calves",
}

// Normalize maps a free-text muscle / body part label to its canonical key.
// Unknown labels are returned trimmed and lowercased - never an error.
func Normalize(raw string) BodyPart {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := synonyms[cleaned]; ok {
		return canonical
	}
	return BodyPart(cleaned)
}
