package progression

import "fmt"

// NodeStatus is the per-user lifecycle state of a progression node.
// Transitions are one-directional: LOCKED -> AVAILABLE -> COMPLETED.
type NodeStatus string

const (
	StatusLocked    NodeStatus = "LOCKED"
	StatusAvailable NodeStatus = "AVAILABLE"
	StatusCompleted NodeStatus = "COMPLETED"
)

// Node is a static progression catalog entry. Nodes form a directed acyclic
// prerequisite graph, prerequisites always reference lower or equal tier nodes.
type Node struct {
	ID               string   `json:"id"`
	Branch           string   `json:"branch"`
	Tier             int      `json:"tier"`
	XP               int      `json:"xp"`
	TargetSessions   int      `json:"targetSessions"`
	Prerequisites    []string `json:"prerequisites,omitempty"`
	ExerciseKeywords []string `json:"exerciseKeywords"`
}

// Catalog is the static node set, loaded once at startup and read-only after.
type Catalog struct {
	nodes   map[string]Node
	ordered []Node
	topTier int
}

func NewCatalog(nodes []Node) (*Catalog, error) {
	c := &Catalog{
		nodes:   make(map[string]Node, len(nodes)),
		ordered: make([]Node, 0, len(nodes)),
	}
	for _, n := range nodes {
		if _, exists := c.nodes[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		if n.XP <= 0 {
			return nil, fmt.Errorf("node %q: xp must be positive", n.ID)
		}
		if n.TargetSessions <= 0 {
			return nil, fmt.Errorf("node %q: target sessions must be positive", n.ID)
		}
		if n.Tier < 0 {
			return nil, fmt.Errorf("node %q: negative tier", n.ID)
		}
		c.nodes[n.ID] = n
		c.ordered = append(c.ordered, n)
		if n.Tier > c.topTier {
			c.topTier = n.Tier
		}
	}

	for _, n := range c.ordered {
		for _, prereqID := range n.Prerequisites {
			prereq, ok := c.nodes[prereqID]
			if !ok {
				return nil, fmt.Errorf("node %q: unknown prerequisite %q", n.ID, prereqID)
			}
			if prereq.Tier > n.Tier {
				return nil, fmt.Errorf("node %q: prerequisite %q is from a higher tier", n.ID, prereqID)
			}
		}
	}

	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}

	return c, nil
}

// checkAcyclic walks the prerequisite graph with a three-color DFS.
func (c *Catalog) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	colors := make(map[string]int, len(c.nodes))

	var visit func(id string) error
	visit = func(id string) error {
		switch colors[id] {
		case gray:
			return fmt.Errorf("prerequisite cycle through node %q", id)
		case black:
			return nil
		}
		colors[id] = gray
		for _, prereqID := range c.nodes[id].Prerequisites {
			if err := visit(prereqID); err != nil {
				return err
			}
		}
		colors[id] = black
		return nil
	}

	for id := range c.nodes {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Node looks a node up by id; second return is false for unknown ids.
func (c *Catalog) Node(id string) (Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes returns the catalog nodes in declaration order.
func (c *Catalog) Nodes() []Node {
	return c.ordered
}

// TopTier is the highest tier present in the catalog. Completing a node of
// this tier earns a crown.
func (c *Catalog) TopTier() int {
	return c.topTier
}

// DefaultCatalog returns the built-in progression tree. Panics on an invalid
// definition, the catalog is static data and a broken one is a build defect.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Node{
		{
			ID: "push-novice", Branch: "push", Tier: 0, XP: 100, TargetSessions: 3,
			ExerciseKeywords: []string{"push-up", "bench press", "dip"},
		},
		{
			ID: "push-adept", Branch: "push", Tier: 1, XP: 250, TargetSessions: 5,
			Prerequisites:    []string{"push-novice"},
			ExerciseKeywords: []string{"bench press", "overhead press", "dip"},
		},
		{
			ID: "push-master", Branch: "push", Tier: 2, XP: 500, TargetSessions: 8,
			Prerequisites:    []string{"push-adept"},
			ExerciseKeywords: []string{"bench press", "overhead press", "weighted dip"},
		},
		{
			ID: "pull-novice", Branch: "pull", Tier: 0, XP: 100, TargetSessions: 3,
			ExerciseKeywords: []string{"row", "pull-up", "lat pulldown"},
		},
		{
			ID: "pull-adept", Branch: "pull", Tier: 1, XP: 250, TargetSessions: 5,
			Prerequisites:    []string{"pull-novice"},
			ExerciseKeywords: []string{"pull-up", "barbell row", "chin-up"},
		},
		{
			ID: "pull-master", Branch: "pull", Tier: 2, XP: 500, TargetSessions: 8,
			Prerequisites:    []string{"pull-adept"},
			ExerciseKeywords: []string{"weighted pull-up", "barbell row", "muscle-up"},
		},
		{
			ID: "legs-novice", Branch: "legs", Tier: 0, XP: 100, TargetSessions: 3,
			ExerciseKeywords: []string{"squat", "lunge", "leg press"},
		},
		{
			ID: "legs-adept", Branch: "legs", Tier: 1, XP: 250, TargetSessions: 5,
			Prerequisites:    []string{"legs-novice"},
			ExerciseKeywords: []string{"squat", "deadlift", "romanian deadlift"},
		},
		{
			ID: "legs-master", Branch: "legs", Tier: 2, XP: 500, TargetSessions: 8,
			Prerequisites:    []string{"legs-adept"},
			ExerciseKeywords: []string{"back squat", "deadlift", "front squat"},
		},
		{
			ID: "iron-crown", Branch: "crown", Tier: 3, XP: 1000, TargetSessions: 10,
			Prerequisites:    []string{"push-master", "pull-master", "legs-master"},
			ExerciseKeywords: []string{"bench press", "deadlift", "back squat", "overhead press"},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("invalid default progression catalog: %s", err))
	}
	return c
}
