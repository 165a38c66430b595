package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/limbo/zenjournal/internal/analytics"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

type RegisterRequest struct {
	Name     string `validate:"required,not_blank,min=2,max=100"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=72"`
}

type UpdateProfileRequest struct {
	Name  *string `validate:"omitempty,not_blank,min=2,max=100"`
	Email *string `validate:"omitempty,email,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8,max=72"`
}

// Nil fields keep their stored value.
type NotificationSettingsRequest struct {
	EmailNotifications *bool
	JournalReminders   *bool
	WeeklyDigest       *bool
	MoodReminders      *bool
	AchievementAlerts  *bool
	SecurityAlerts     *bool
}

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

type Export struct {
	ContentType string
	Filename    string
	Body        []byte
}

type UserServiceI interface {
	// Validates user's data, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*entity.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, req *ChangePasswordRequest) error
	// Removes the account and every journal entry it owns
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
	GetNotificationSettings(ctx context.Context, id uuid.UUID) (*entity.NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, id uuid.UUID, req *NotificationSettingsRequest) (*entity.NotificationSettings, error)
	ExportData(ctx context.Context, id uuid.UUID, format ExportFormat) (*Export, error)
}

type CreateEntryRequest struct {
	Title   string `validate:"required,not_blank,max=200"`
	Content string `validate:"required,not_blank"`
}

type UpdateEntryRequest struct {
	Title   *string `validate:"omitempty,not_blank,max=200"`
	Content *string `validate:"omitempty,not_blank"`
}

type LogMoodRequest struct {
	Mood string `validate:"required,mood_label"`
	Note string `validate:"max=5000"`
}

type ListEntriesOpts struct {
	Page   int
	Limit  int
	Search string
	Sort   repository.EntrySort
}

type Pagination struct {
	CurrentPage    int   `json:"current_page"`
	TotalPages     int   `json:"total_pages"`
	TotalEntries   int64 `json:"total_entries"`
	EntriesPerPage int   `json:"entries_per_page"`
	HasNextPage    bool  `json:"has_next_page"`
	HasPrevPage    bool  `json:"has_prev_page"`
}

type EntryFilters struct {
	Search string               `json:"search"`
	Sort   repository.EntrySort `json:"sort"`
}

type EntriesPage struct {
	Entries    []*entity.Entry `json:"entries"`
	Pagination Pagination      `json:"pagination"`
	Filters    EntryFilters    `json:"filters"`
}

type EntriesServiceI interface {
	Create(ctx context.Context, uid uuid.UUID, req *CreateEntryRequest) (*entity.Entry, error)
	List(ctx context.Context, uid uuid.UUID, opts ListEntriesOpts) (*EntriesPage, error)
	// Checks ownership, applies non-nil fields and refreshes updated time
	Update(ctx context.Context, uid uuid.UUID, id string, req *UpdateEntryRequest) (*entity.Entry, error)
	Delete(ctx context.Context, uid uuid.UUID, id string) error
	// Stores a quick mood check as a regular entry
	LogMood(ctx context.Context, uid uuid.UUID, req *LogMoodRequest) (*entity.Entry, error)
}

type AnalyticsServiceI interface {
	Overview(ctx context.Context, uid uuid.UUID) (*analytics.Overview, error)
	Trends(ctx context.Context, uid uuid.UUID, days int) (*analytics.Trends, error)
	// month and year filter only when both are valid
	Calendar(ctx context.Context, uid uuid.UUID, month, year int) (*analytics.Calendar, error)
	Stats(ctx context.Context, uid uuid.UUID, days int) (*analytics.Stats, error)
	Activity(ctx context.Context, uid uuid.UUID) ([]analytics.ActivityDay, error)
}

type InsightsServiceI interface {
	Insights(ctx context.Context, uid uuid.UUID) (*Insights, error)
}

type LimiterI interface {
	// Reports whether the caller identified by key may proceed
	Allow(ctx context.Context, key string) (bool, error)
}
