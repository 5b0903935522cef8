package progression

import "sort"

// LeaderboardSize caps the number of rows served.
const LeaderboardSize = 10

// Profile is the persisted per-user progression aggregate.
type Profile struct {
	UserID  string `json:"userId"`
	Alias   string `json:"alias"`
	TotalXP int    `json:"totalXp"`
	Crowns  int    `json:"crowns"`
}

// LeaderboardRow is one ranked leaderboard entry. Only the alias is exposed,
// never the real user identity.
type LeaderboardRow struct {
	Rank    int    `json:"rank"`
	Alias   string `json:"alias"`
	TotalXP int    `json:"totalXp"`
	Crowns  int    `json:"crowns"`
}

// Leaderboard is the ranked view plus the requesting user's own rank, which
// may lie outside the served rows. Rank is nil when the user has no profile
// or there are no profiles at all.
type Leaderboard struct {
	Rows     []LeaderboardRow `json:"rows"`
	UserRank *int             `json:"userRank,omitempty"`
}

// RankProfiles sorts by total XP descending, ties broken by user id for a
// deterministic order, and returns at most LeaderboardSize rows. Profiles
// with equal XP share a rank, the rank of a row is 1 plus the number of
// profiles with strictly greater XP. Equal-XP profiles being indistinguishable
// by rank is intentional.
func RankProfiles(profiles []Profile) []LeaderboardRow {
	sorted := make([]Profile, len(profiles))
	copy(sorted, profiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalXP != sorted[j].TotalXP {
			return sorted[i].TotalXP > sorted[j].TotalXP
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	size := len(sorted)
	if size > LeaderboardSize {
		size = LeaderboardSize
	}

	rows := make([]LeaderboardRow, 0, size)
	for i := 0; i < size; i++ {
		rows = append(rows, LeaderboardRow{
			Rank:    RankOf(profiles, sorted[i].TotalXP),
			Alias:   sorted[i].Alias,
			TotalXP: sorted[i].TotalXP,
			Crowns:  sorted[i].Crowns,
		})
	}
	return rows
}

// RankOf computes the rank of a given XP total without a full sort: one plus
// the number of profiles with strictly more XP.
func RankOf(profiles []Profile, totalXP int) int {
	greater := 0
	for _, p := range profiles {
		if p.TotalXP > totalXP {
			greater++
		}
	}
	return greater + 1
}

// BuildLeaderboard assembles the ranked rows and, when userID has a profile,
// that user's rank. Empty profile set yields empty rows and a nil rank.
func BuildLeaderboard(profiles []Profile, userID string) Leaderboard {
	board := Leaderboard{
		Rows: RankProfiles(profiles),
	}

	if userID == "" {
		return board
	}
	for _, p := range profiles {
		if p.UserID == userID {
			rank := RankOf(profiles, p.TotalXP)
			board.UserRank = &rank
			break
		}
	}
	return board
}
