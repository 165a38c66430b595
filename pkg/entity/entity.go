package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type NotificationSettings struct {
	EmailNotifications bool `json:"email_notifications"`
	JournalReminders   bool `json:"journal_reminders"`
	WeeklyDigest       bool `json:"weekly_digest"`
	MoodReminders      bool `json:"mood_reminders"`
	AchievementAlerts  bool `json:"achievement_alerts"`
	SecurityAlerts     bool `json:"security_alerts"`
}

// Settings every new account starts with.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EmailNotifications: true,
		JournalReminders:   true,
		WeeklyDigest:       false,
		MoodReminders:      true,
		AchievementAlerts:  true,
		SecurityAlerts:     true,
	}
}

type Entry struct {
	ID        string    `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateRange bounds entries by creation time. Zero From or To means the side is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (dr DateRange) Contains(t time.Time) bool {
	if !dr.From.IsZero() && t.Before(dr.From) {
		return false
	}
	if !dr.To.IsZero() && !t.Before(dr.To) {
		return false
	}
	return true
}
