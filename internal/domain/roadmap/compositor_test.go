package roadmap

import (
	"reflect"
	"testing"
)

func fixture() Tables {
	return Tables{
		Users: []User{
			{UserID: "1", Name: "Hana", Email: "hana@example.com", Course: "Belajar Dasar Web", LearningPath: "Front-End Web Developer"},
			{UserID: "2", Name: "Rafi", Email: "rafi@example.com", Course: "Belajar Python", LearningPath: "Data Scientist"},
			{UserID: "3", Name: "Sari", Email: "sari@example.com"},
			{UserID: "9", Name: "Hana Lama", Email: "hana@example.com"},
		},
		Modules: []Module{
			{TitleID: 1, Title: "Pengenalan HTML", UnlockRequirement: 80},
			{TitleID: 2, Title: "CSS Layout", UnlockRequirement: 70},
			{TitleID: 3, Title: "JavaScript Dasar", UnlockRequirement: 90},
		},
		Predictions: []Prediction{
			{UserID: "1", TitleID: 2, Progress: 85.04, Status: "Not Started"},
			{UserID: "1", TitleID: 1, Progress: 85, Status: StatusInProgress},
			{UserID: "1", TitleID: 3, Progress: 12.3, Status: "Not Started"},
			{UserID: "2", TitleID: 1, Progress: 100.7, Status: StatusCompleted},
			{UserID: "2", TitleID: 7, Progress: -4, Status: "Not Started"},
		},
	}
}

func TestComposeByEmail_NextModuleUnlocked(t *testing.T) {
	c := NewCompositor(fixture())

	v, ok := c.ComposeByEmail("hana@example.com")
	if !ok {
		t.Fatalf("expected user to be found")
	}
	if v.UserName != "Hana" || v.CurrentCourse != "Belajar Dasar Web" {
		t.Fatalf("unexpected user fields %+v", v)
	}

	var ids []int
	for _, it := range v.Roadmap {
		ids = append(ids, it.TitleID)
	}
	if !reflect.DeepEqual(ids, []int{1, 2, 3}) {
		t.Fatalf("expected title order [1 2 3], got %v", ids)
	}

	want := "🎉 Karena kamu sudah mencapai 85.0% pada Pengenalan HTML, modul CSS Layout sudah terbuka!"
	if v.NextModuleMessage != want {
		t.Fatalf("message = %q, want %q", v.NextModuleMessage, want)
	}
	if v.Unlock == nil || v.Unlock.Next.TitleID != 2 {
		t.Fatalf("expected unlock of module 2, got %+v", v.Unlock)
	}
	if v.TotalModules != 3 || v.InProgressModules != 1 || v.CompletedModules != 0 {
		t.Fatalf("unexpected tallies %d/%d/%d", v.TotalModules, v.InProgressModules, v.CompletedModules)
	}
}

func TestCompose_ItemStates(t *testing.T) {
	v, _ := NewCompositor(fixture()).ComposeByEmail("hana@example.com")

	want := []Item{
		{TitleID: 1, Title: "Pengenalan HTML", Status: StatusInProgress, Progress: 85, UnlockRequirement: 80,
			AccessStatus: AccessUnlocked, Display: "Pengenalan HTML 🔄 (In Progress)", Unlocked: true},
		{TitleID: 2, Title: "CSS Layout", Status: "Not Started", Progress: 85, UnlockRequirement: 70,
			AccessStatus: AccessUnlocked, Display: "CSS Layout 🔓 (Unlocked)", Unlocked: true},
		{TitleID: 3, Title: "JavaScript Dasar", Status: "Not Started", Progress: 12.3, UnlockRequirement: 90,
			AccessStatus: "🔒 (Locked - 90%)", Display: "JavaScript Dasar 🔒 (Locked)"},
	}
	if !reflect.DeepEqual(v.Roadmap, want) {
		t.Fatalf("roadmap mismatch:\n got %+v\nwant %+v", v.Roadmap, want)
	}
}

func TestCompose_MissingMetadataAndClipping(t *testing.T) {
	v, ok := NewCompositor(fixture()).ComposeByUserID("2")
	if !ok {
		t.Fatalf("expected user 2")
	}
	if len(v.Roadmap) != 2 {
		t.Fatalf("expected 2 items, got %d", len(v.Roadmap))
	}

	done, unknown := v.Roadmap[0], v.Roadmap[1]
	if done.Progress != 100 || !done.Unlocked || done.Display != "Pengenalan HTML ✅ (Completed)" {
		t.Fatalf("unexpected completed item %+v", done)
	}
	if unknown.Title != "Module 7" || unknown.UnlockRequirement != DefaultUnlockRequirement {
		t.Fatalf("unexpected fallback metadata %+v", unknown)
	}
	if unknown.Progress != 0 || unknown.AccessStatus != "🔒 (Locked - 80%)" {
		t.Fatalf("unexpected clipped item %+v", unknown)
	}
	if v.NextModuleMessage != MessageKeepLearning || v.Unlock != nil {
		t.Fatalf("expected no unlock, got %q", v.NextModuleMessage)
	}
	if v.CompletedModules != 1 {
		t.Fatalf("expected one completed module, got %d", v.CompletedModules)
	}
}

func TestCompose_NoProgress(t *testing.T) {
	v, ok := NewCompositor(fixture()).ComposeByEmail("sari@example.com")
	if !ok {
		t.Fatalf("expected user to be found")
	}
	if v.NextModuleMessage != MessageNoProgress {
		t.Fatalf("message = %q", v.NextModuleMessage)
	}
	if v.Roadmap == nil || len(v.Roadmap) != 0 || v.TotalModules != 0 {
		t.Fatalf("expected empty non-nil roadmap, got %+v", v.Roadmap)
	}
}

func TestCompose_UnknownUser(t *testing.T) {
	c := NewCompositor(fixture())
	if _, ok := c.ComposeByEmail("nobody@example.com"); ok {
		t.Fatalf("expected not found by email")
	}
	if _, ok := c.ComposeByUserID("42"); ok {
		t.Fatalf("expected not found by id")
	}
}

func TestCompose_UnlockNotification(t *testing.T) {
	modules := map[int]Module{
		1: {TitleID: 1, Title: "A", UnlockRequirement: 80},
		2: {TitleID: 2, Title: "B", UnlockRequirement: 80},
		3: {TitleID: 3, Title: "C", UnlockRequirement: 50},
	}
	tests := []struct {
		name string
		rows []Prediction
		next string
	}{
		{
			name: "in progress below threshold",
			rows: []Prediction{{TitleID: 1, Progress: 79.94, Status: StatusInProgress}, {TitleID: 2}},
		},
		{
			name: "progress that rounds to threshold is still below it",
			rows: []Prediction{{TitleID: 1, Progress: 79.96, Status: StatusInProgress}, {TitleID: 2}},
		},
		{
			name: "progress at threshold",
			rows: []Prediction{{TitleID: 1, Progress: 80, Status: StatusInProgress}, {TitleID: 2}},
			next: "B",
		},
		{
			name: "last module opens nothing",
			rows: []Prediction{{TitleID: 1, Status: StatusCompleted}, {TitleID: 3, Progress: 60, Status: StatusInProgress}},
		},
		{
			name: "first qualifying in progress module wins",
			rows: []Prediction{
				{TitleID: 1, Progress: 10, Status: StatusInProgress},
				{TitleID: 2, Progress: 95, Status: StatusInProgress},
				{TitleID: 3},
			},
			next: "C",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Compose(User{UserID: "u"}, tt.rows, modules)
			switch {
			case tt.next == "" && v.Unlock != nil:
				t.Fatalf("expected no unlock, got %+v", v.Unlock)
			case tt.next == "" && v.NextModuleMessage != MessageKeepLearning:
				t.Fatalf("message = %q", v.NextModuleMessage)
			case tt.next != "" && (v.Unlock == nil || v.Unlock.Next.Title != tt.next):
				t.Fatalf("expected unlock of %s, got %+v", tt.next, v.Unlock)
			}
		})
	}
}

func TestCompose_StatusCorrectness(t *testing.T) {
	modules := map[int]Module{}
	var rows []Prediction
	statuses := []string{StatusCompleted, StatusInProgress, "Not Started", "Unknown"}
	for i := 0; i < 40; i++ {
		req := 50.5 + float64(i%5)*10
		modules[i] = Module{TitleID: i, Title: "M", UnlockRequirement: req}
		rows = append(rows, Prediction{TitleID: i, Progress: float64(i*7%110) - 3.25 + float64(i%3)*0.2, Status: statuses[i%len(statuses)]})
	}

	v := Compose(User{UserID: "u"}, rows, modules)
	for i, it := range v.Roadmap {
		if it.Status == StatusCompleted && !it.Unlocked {
			t.Fatalf("completed module locked: %+v", it)
		}
		regular := it.Status != StatusCompleted && it.Status != StatusInProgress
		below := ClipProgress(rows[i].Progress) < modules[i].UnlockRequirement
		if regular && below && it.Unlocked {
			t.Fatalf("module below threshold unlocked: %+v", it)
		}
		if it.Unlocked != (it.AccessStatus == AccessUnlocked) {
			t.Fatalf("access status disagrees with state: %+v", it)
		}
	}
}

func TestCompose_ThresholdUsesUnroundedValues(t *testing.T) {
	modules := map[int]Module{
		1: {TitleID: 1, Title: "A", UnlockRequirement: 80},
		2: {TitleID: 2, Title: "B", UnlockRequirement: 75.5},
		3: {TitleID: 3, Title: "C", UnlockRequirement: 75.5},
	}
	rows := []Prediction{
		{TitleID: 1, Progress: 79.96, Status: "Not Started"},
		{TitleID: 2, Progress: 75.2, Status: "Not Started"},
		{TitleID: 3, Progress: 75.5, Status: "Not Started"},
	}

	v := Compose(User{UserID: "u"}, rows, modules)
	a, b, c := v.Roadmap[0], v.Roadmap[1], v.Roadmap[2]
	if a.Progress != 80 || a.Unlocked || a.Display != "A 🔒 (Locked)" || a.AccessStatus != "🔒 (Locked - 80%)" {
		t.Fatalf("79.96 against 80 should stay locked: %+v", a)
	}
	if b.Unlocked || b.UnlockRequirement != 75 {
		t.Fatalf("75.2 against 75.5 should stay locked: %+v", b)
	}
	if !c.Unlocked || c.AccessStatus != AccessUnlocked {
		t.Fatalf("75.5 against 75.5 should unlock: %+v", c)
	}
}

func TestComposeAll(t *testing.T) {
	views := NewCompositor(fixture()).ComposeAll()

	var emails []string
	for _, v := range views {
		emails = append(emails, v.Email)
	}
	want := []string{"hana@example.com", "rafi@example.com", "sari@example.com"}
	if !reflect.DeepEqual(emails, want) {
		t.Fatalf("emails = %v, want %v", emails, want)
	}
	if views[0].UserName != "Hana" {
		t.Fatalf("duplicate email should keep the first user, got %q", views[0].UserName)
	}
}

func TestClipProgress(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 79.96: 79.96, 100.7: 100} {
		if got := ClipProgress(in); got != want {
			t.Errorf("ClipProgress(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestRoundProgress(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.04: 0, 0.05: 0.1, 85.04: 85, 99.96: 100, 120: 100} {
		if got := RoundProgress(in); got != want {
			t.Errorf("RoundProgress(%v) = %v, want %v", in, got, want)
		}
	}
}
