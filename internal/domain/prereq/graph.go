package prereq

// Graph is the prerequisite relation resolved once at catalog load time.
// Edges point from a prerequisite (parent) to the skill that requires it.
type Graph struct {
	resolver    *Resolver
	tokens      [][]string
	resolutions [][]int
	parents     [][]int
	children    [][]int
}

// Edge is one resolved prerequisite token.
type Edge struct {
	Parent int
	Child  int
}

// BuildGraph parses every prerequisite description once. names and
// prerequisites are indexed by skill id. Resolution is first-match-wins over
// the whole catalog, so a token may resolve to the skill that wrote it ("CSS"
// under "CSS Lanjutan"); such self edges are kept.
func BuildGraph(names, prerequisites []string) *Graph {
	g := &Graph{
		resolver:    NewResolver(names),
		tokens:      make([][]string, len(names)),
		resolutions: make([][]int, len(names)),
		parents:     make([][]int, len(names)),
		children:    make([][]int, len(names)),
	}

	for id := range names {
		var text string
		if id < len(prerequisites) {
			text = prerequisites[id]
		}
		g.tokens[id] = Parse(text)

		seen := make(map[int]struct{})
		for _, tok := range g.tokens[id] {
			parent, ok := g.resolver.Match(tok)
			if !ok {
				continue
			}
			g.resolutions[id] = append(g.resolutions[id], parent)
			if _, dup := seen[parent]; dup {
				continue
			}
			seen[parent] = struct{}{}
			g.parents[id] = append(g.parents[id], parent)
			g.children[parent] = append(g.children[parent], id)
		}
	}
	return g
}

func (g *Graph) Len() int { return len(g.tokens) }

// Tokens returns the parsed prerequisite tokens of a skill.
func (g *Graph) Tokens(id int) []string { return g.tokens[id] }

// TokenCount is the number of prerequisites written for a skill, resolved or not.
func (g *Graph) TokenCount(id int) int { return len(g.tokens[id]) }

// Resolutions returns one parent id per successfully resolved token, in token
// order. The same parent can appear more than once.
func (g *Graph) Resolutions(id int) []int { return g.resolutions[id] }

// Parents returns distinct resolved parents in first-resolved order.
func (g *Graph) Parents(id int) []int { return g.parents[id] }

func (g *Graph) Children(id int) []int { return g.children[id] }

// Edges lists one edge per resolved token, ordered by child id then token order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for child, ps := range g.resolutions {
		for _, p := range ps {
			out = append(out, Edge{Parent: p, Child: child})
		}
	}
	return out
}

func (g *Graph) Resolver() *Resolver { return g.resolver }
