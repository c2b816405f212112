package ws

import (
	"time"

	"github.com/goccy/go-json"
)

const EventModuleUnlocked = "module_unlocked"

type ModuleUnlockedEvent struct {
	Type        string `json:"type"`
	Email       string `json:"email"`
	TitleID     int    `json:"title_id"`
	NextTitleID int    `json:"next_title_id"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
}

// Notifier publishes roadmap events through a Hub.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) ModuleUnlocked(email string, titleID, nextTitleID int, msg string) {
	if n == nil || n.hub == nil {
		return
	}
	email = normalizeEmail(email)
	if email == "" {
		return
	}

	b, err := json.Marshal(ModuleUnlockedEvent{
		Type:        EventModuleUnlocked,
		Email:       email,
		TitleID:     titleID,
		NextTitleID: nextTitleID,
		Message:     msg,
		Timestamp:   n.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	n.hub.Publish(email, b)
}
