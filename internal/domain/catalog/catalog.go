// Package catalog holds the immutable skill dataset and its TF-IDF similarity
// spaces. A Catalog is built once and is safe for concurrent reads.
package catalog

// Catalog keeps skills in load order. Every ordering decision downstream
// (first match wins, tie-breaks) refers to this order via Skill.ID.
type Catalog struct {
	skills []Skill
	paths  []string
	byPath map[string][]int

	// skill name + description
	skillSpace *Index
	// learning path + skill name + description
	pathSpace *Index
}

func New(skills []Skill) (*Catalog, error) {
	if len(skills) == 0 {
		return nil, configErrorf("empty catalog")
	}

	c := &Catalog{
		skills: make([]Skill, len(skills)),
		byPath: make(map[string][]int),
	}

	skillDocs := make([]string, len(skills))
	pathDocs := make([]string, len(skills))
	for i, s := range skills {
		if s.Name == "" {
			return nil, configErrorf("skill %d: empty name", i)
		}
		if !s.Level.Valid() {
			return nil, configErrorf("skill %q: invalid level %d", s.Name, s.Level)
		}
		if s.LearningPath == "" {
			return nil, configErrorf("skill %q: empty learning path", s.Name)
		}

		s.ID = i
		c.skills[i] = s
		if _, ok := c.byPath[s.LearningPath]; !ok {
			c.paths = append(c.paths, s.LearningPath)
		}
		c.byPath[s.LearningPath] = append(c.byPath[s.LearningPath], i)

		skillDocs[i] = s.Name + " " + s.Description
		pathDocs[i] = s.LearningPath + " " + skillDocs[i]
	}

	c.skillSpace = NewIndex(skillDocs)
	c.pathSpace = NewIndex(pathDocs)
	return c, nil
}

func (c *Catalog) Len() int { return len(c.skills) }

func (c *Catalog) Skill(id int) Skill { return c.skills[id] }

func (c *Catalog) Level(id int) Level { return c.skills[id].Level }

// Skills returns a copy of all skills in catalog order.
func (c *Catalog) Skills() []Skill {
	out := make([]Skill, len(c.skills))
	copy(out, c.skills)
	return out
}

func (c *Catalog) Names() []string {
	out := make([]string, len(c.skills))
	for i, s := range c.skills {
		out[i] = s.Name
	}
	return out
}

// Paths returns learning paths in order of first appearance.
func (c *Catalog) Paths() []string {
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

// InPath returns the ids of skills in a learning path, in catalog order.
func (c *Catalog) InPath(path string) []int {
	ids := c.byPath[path]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Similarity is the cosine similarity of two skills in the skill-text space.
func (c *Catalog) Similarity(a, b int) float64 {
	return Cosine(c.skillSpace.Row(a), c.skillSpace.Row(b))
}

// QuerySimilarity compares free text against one skill in the skill-text space.
func (c *Catalog) QuerySimilarity(text string, id int) float64 {
	return Cosine(c.skillSpace.Query(text), c.skillSpace.Row(id))
}

// DetectLearningPath returns the path holding the skill most similar to the
// text in the path-text space. Ties, including the all-zero case for text with
// no known vocabulary, go to the path that appears first in the catalog.
func (c *Catalog) DetectLearningPath(text string) string {
	q := c.pathSpace.Query(text)

	best := c.paths[0]
	bestScore := -1.0
	for _, p := range c.paths {
		score := 0.0
		for _, id := range c.byPath[p] {
			if s := Cosine(q, c.pathSpace.Row(id)); s > score {
				score = s
			}
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}
