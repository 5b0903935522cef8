package progression

import (
	"sort"
	"strings"

	"github.com/vstojkovic/repforge/internal/workouts"
)

// NodeProgress is the persisted per-user-per-node counter. The stored status
// only caches the terminal LOCKED / COMPLETED facts, AVAILABLE is always
// recomputed on read from the prerequisite closure.
type NodeProgress struct {
	UserID          string     `json:"userId"`
	NodeID          string     `json:"nodeId"`
	CompletionCount int        `json:"completionCount"`
	Status          NodeStatus `json:"status"`
}

// NodeState is the derived per-node view served to clients.
type NodeState struct {
	Node
	CompletionCount int        `json:"completionCount"`
	Status          NodeStatus `json:"status"`
	// Progress is the completion fraction for display, capped at 1
	Progress float64 `json:"progress"`
}

// BranchSummary aggregates node states per progression branch.
type BranchSummary struct {
	Branch         string  `json:"branch"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	PercentCleared float64 `json:"percentCleared"`
}

// ExperienceState is the full derived progression view of one user.
type ExperienceState struct {
	Alias    string          `json:"alias"`
	TotalXP  int             `json:"totalXp"`
	Crowns   int             `json:"crowns"`
	Nodes    []NodeState     `json:"nodes"`
	Branches []BranchSummary `json:"branches"`
}

// Evaluate derives the node states for a user from the catalog and the
// persisted progress rows. Progress rows referencing unknown node ids are
// orphaned data and skipped. Pure function of its inputs.
func Evaluate(catalog *Catalog, progress []NodeProgress) []NodeState {
	countFor := make(map[string]int, len(progress))
	completed := make(map[string]bool, len(progress))
	for _, p := range progress {
		if _, known := catalog.Node(p.NodeID); !known {
			continue // orphaned row
		}
		countFor[p.NodeID] = p.CompletionCount
		if p.Status == StatusCompleted {
			completed[p.NodeID] = true
		}
	}

	states := make([]NodeState, 0, len(catalog.Nodes()))
	for _, node := range catalog.Nodes() {
		count := countFor[node.ID]

		status := StatusLocked
		switch {
		case completed[node.ID] || count >= node.TargetSessions:
			status = StatusCompleted
		case prerequisitesCompleted(node, completed):
			status = StatusAvailable
		}

		progressFraction := float64(count) / float64(node.TargetSessions)
		if progressFraction > 1 {
			progressFraction = 1
		}

		states = append(states, NodeState{
			Node:            node,
			CompletionCount: count,
			Status:          status,
			Progress:        progressFraction,
		})
	}

	return states
}

func prerequisitesCompleted(node Node, completed map[string]bool) bool {
	for _, prereqID := range node.Prerequisites {
		if !completed[prereqID] {
			return false
		}
	}
	return true
}

// SummarizeBranches folds node states into per-branch totals, ordered by
// branch name. A zero denominator is substituted with 1 so an empty branch
// reports 0 percent cleared instead of dividing by zero.
func SummarizeBranches(states []NodeState) []BranchSummary {
	byBranch := make(map[string]*BranchSummary)
	for _, st := range states {
		summary, ok := byBranch[st.Branch]
		if !ok {
			summary = &BranchSummary{Branch: st.Branch}
			byBranch[st.Branch] = summary
		}
		summary.Total++
		if st.Status == StatusCompleted {
			summary.Completed++
		}
	}

	summaries := make([]BranchSummary, 0, len(byBranch))
	for _, summary := range byBranch {
		denominator := summary.Total
		if denominator == 0 {
			denominator = 1
		}
		summary.PercentCleared = float64(summary.Completed) / float64(denominator)
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Branch < summaries[j].Branch
	})

	return summaries
}

// minKeywordMatches is the number of node keywords a session has to hit to
// qualify: at least half, rounded up. Deterministic and independent of the
// order sessions are processed in.
func minKeywordMatches(keywordCount int) int {
	return (keywordCount + 1) / 2
}

// SessionMatchesNode reports whether a workout session qualifies for a node.
// A keyword hits when it appears as a case-insensitive substring of any
// performed exercise name.
func SessionMatchesNode(session workouts.Session, node Node) bool {
	if len(node.ExerciseKeywords) == 0 {
		return false
	}

	names := make([]string, 0, len(session.Exercises))
	for _, ex := range session.Exercises {
		names = append(names, strings.ToLower(ex.Name))
	}

	matches := 0
	for _, keyword := range node.ExerciseKeywords {
		keyword = strings.ToLower(keyword)
		for _, name := range names {
			if strings.Contains(name, keyword) {
				matches++
				break
			}
		}
	}

	return matches >= minKeywordMatches(len(node.ExerciseKeywords))
}
