package recovery

// DefaultRestWindowHours applies to any body part absent from the table.
const DefaultRestWindowHours = 48

// restWindows holds the recommended rest duration in whole hours per body part.
// Domain-tunable data, not logic. Constructed once, read-only.
var restWindows = map[BodyPart]int{
	"chest":      48,
	"upper back": 48,
	"lower back": 72,
	"shoulders":  48,
	"biceps":     48,
	"triceps":    48,
	"forearms":   24,
	"core":       24,
	"quadriceps": 48,
	"hamstrings": 72,
	"glutes":     48,
	"calves":     24,
	"legs":       48,
}

// RestWindowHours returns the recommended rest window for the given body part,
// falling back to DefaultRestWindowHours for unknown keys.
func RestWindowHours(bp BodyPart) int {
	if hours, ok := restWindows[bp]; ok {
		return hours
	}
	return DefaultRestWindowHours
}

// Catalog returns all body parts with an explicit rest window, i.e. the set of
// parts always present in recovery insights (even when never worked).
func Catalog() []BodyPart {
	catalog := make([]BodyPart, 0, len(restWindows))
	for bp := range restWindows {
		catalog = append(catalog, bp)
	}
	return catalog
}
