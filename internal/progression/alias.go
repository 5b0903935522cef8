package progression

import "fmt"

// FallbackAlias is used when no stable seed is available.
const FallbackAlias = "Rogue Athlete"

var aliasAdjectives = []string{
	"Swift", "Iron", "Mighty", "Silent", "Golden",
	"Savage", "Steady", "Crimson", "Stoic", "Feral",
	"Granite", "Rapid", "Nimble", "Bold", "Grim",
}

var aliasCreatures = []string{
	"Wolf", "Falcon", "Bear", "Panther", "Bison",
	"Viper", "Raven", "Stag", "Lynx", "Mantis",
	"Kraken", "Badger", "Hawk", "Jackal", "Orca",
}

// Alias derives a deterministic leaderboard pseudonym from a stable seed,
// typically the user id. Same seed, same alias, no randomness involved.
func Alias(seed string) string {
	if seed == "" {
		return FallbackAlias
	}

	var h int32
	for _, c := range seed {
		h = (h << 5) - h + c
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}

	adjective := aliasAdjectives[v%int64(len(aliasAdjectives))]
	creature := aliasCreatures[(v/int64(len(aliasAdjectives)))%int64(len(aliasCreatures))]
	suffix := (v / int64(len(aliasAdjectives)*len(aliasCreatures))) % 100

	return fmt.Sprintf("%s %s %02d", adjective, creature, suffix)
}
