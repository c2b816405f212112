package roadmap

import (
	"fmt"
	"math"
	"sort"
)

// Compositor answers roadmap lookups over one immutable set of tables.
type Compositor struct {
	users   []User
	byEmail map[string]int
	byID    map[string]int
	modules map[int]Module
	rows    map[string][]Prediction
}

// NewCompositor indexes the tables. Duplicate users keep their first row;
// duplicate module metadata keeps the first row as well.
func NewCompositor(t Tables) *Compositor {
	c := &Compositor{
		users:   t.Users,
		byEmail: make(map[string]int, len(t.Users)),
		byID:    make(map[string]int, len(t.Users)),
		modules: make(map[int]Module, len(t.Modules)),
		rows:    make(map[string][]Prediction),
	}
	for i, u := range t.Users {
		if _, ok := c.byEmail[u.Email]; !ok {
			c.byEmail[u.Email] = i
		}
		if _, ok := c.byID[u.UserID]; !ok {
			c.byID[u.UserID] = i
		}
	}
	for _, m := range t.Modules {
		if _, ok := c.modules[m.TitleID]; !ok {
			c.modules[m.TitleID] = m
		}
	}
	for _, p := range t.Predictions {
		c.rows[p.UserID] = append(c.rows[p.UserID], p)
	}
	return c
}

// ComposeByEmail reports false when no user has that email.
func (c *Compositor) ComposeByEmail(email string) (View, bool) {
	i, ok := c.byEmail[email]
	if !ok {
		return View{}, false
	}
	u := c.users[i]
	return Compose(u, c.rows[u.UserID], c.modules), true
}

// ComposeByUserID reports false when the user id is not in the roster.
func (c *Compositor) ComposeByUserID(userID string) (View, bool) {
	i, ok := c.byID[userID]
	if !ok {
		return View{}, false
	}
	u := c.users[i]
	return Compose(u, c.rows[u.UserID], c.modules), true
}

// ComposeAll returns one view per distinct email in roster order.
func (c *Compositor) ComposeAll() []View {
	out := make([]View, 0, len(c.byEmail))
	seen := make(map[string]struct{}, len(c.byEmail))
	for _, u := range c.users {
		if _, dup := seen[u.Email]; dup {
			continue
		}
		seen[u.Email] = struct{}{}
		v, _ := c.ComposeByEmail(u.Email)
		out = append(out, v)
	}
	return out
}

// Users returns the roster in source order.
func (c *Compositor) Users() []User {
	out := make([]User, len(c.users))
	copy(out, c.users)
	return out
}

// Compose builds the roadmap of one user. Rows are ordered by title id; rows
// without module metadata fall back to a generic title and the default unlock
// requirement. Access decisions compare the clipped, unrounded progress with
// the exact threshold; rounding applies only to the rendered item.
func Compose(u User, rows []Prediction, modules map[int]Module) View {
	v := View{
		UserID:        u.UserID,
		UserName:      u.Name,
		Email:         u.Email,
		CurrentCourse: u.Course,
		LearningPath:  u.LearningPath,
		Roadmap:       []Item{},
	}
	if len(rows) == 0 {
		v.NextModuleMessage = MessageNoProgress
		return v
	}

	sorted := make([]Prediction, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TitleID < sorted[j].TitleID })

	gates := make([]gate, 0, len(sorted))
	for _, p := range sorted {
		item, g := deriveItem(p, modules)
		gates = append(gates, g)
		switch item.Status {
		case StatusCompleted:
			v.CompletedModules++
		case StatusInProgress:
			v.InProgressModules++
		}
		v.Roadmap = append(v.Roadmap, item)
	}
	v.TotalModules = len(v.Roadmap)

	v.NextModuleMessage = MessageKeepLearning
	if next := findUnlock(v.Roadmap, gates); next != nil {
		v.Unlock = next
		v.NextModuleMessage = UnlockMessage(*next)
	}
	return v
}

// gate holds the unrounded values an item's access decision was made on.
type gate struct {
	progress    float64
	requirement float64
}

func (g gate) cleared() bool { return g.progress >= g.requirement }

func deriveItem(p Prediction, modules map[int]Module) (Item, gate) {
	m, ok := modules[p.TitleID]
	if !ok {
		m = Module{TitleID: p.TitleID, UnlockRequirement: DefaultUnlockRequirement}
	}
	title := m.Title
	if title == "" {
		title = fmt.Sprintf("Module %d", p.TitleID)
	}

	g := gate{progress: ClipProgress(p.Progress), requirement: m.UnlockRequirement}
	item := Item{
		TitleID:           p.TitleID,
		Title:             title,
		Status:            p.Status,
		Progress:          RoundProgress(p.Progress),
		UnlockRequirement: int(m.UnlockRequirement),
	}

	switch {
	case item.Status == StatusCompleted:
		item.Unlocked = true
		item.Display = title + " ✅ (Completed)"
	case item.Status == StatusInProgress:
		item.Unlocked = true
		item.Display = title + " 🔄 (In Progress)"
	case g.cleared():
		item.Unlocked = true
		item.Display = title + " 🔓 (Unlocked)"
	default:
		item.Display = title + " 🔒 (Locked)"
	}

	if item.Unlocked {
		item.AccessStatus = AccessUnlocked
	} else {
		item.AccessStatus = fmt.Sprintf("🔒 (Locked - %.0f%%)", m.UnlockRequirement)
	}
	return item, g
}

// findUnlock returns the first in-progress module, in title order, that has
// reached its threshold and is followed by another module.
func findUnlock(items []Item, gates []gate) *Unlock {
	for i, it := range items {
		if it.Status != StatusInProgress || !gates[i].cleared() {
			continue
		}
		if i+1 >= len(items) {
			return nil
		}
		return &Unlock{Current: it, Next: items[i+1]}
	}
	return nil
}

func UnlockMessage(u Unlock) string {
	return fmt.Sprintf("🎉 Karena kamu sudah mencapai %.1f%% pada %s, modul %s sudah terbuka!",
		u.Current.Progress, u.Current.Title, u.Next.Title)
}

// ClipProgress bounds a predicted progress to [0,100]; NaN becomes 0.
func ClipProgress(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}

// RoundProgress clips and rounds half away from zero to one decimal.
func RoundProgress(p float64) float64 {
	return math.Round(ClipProgress(p)*10) / 10
}
