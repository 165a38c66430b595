package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/internal/repository"
	"github.com/limbo/zenjournal/pkg/entity"
)

type UserService struct {
	repo    repository.UsersRepositoryI
	entries repository.EntriesRepositoryI
	now     func() time.Time
}

func NewUserService(usersRepo repository.UsersRepositoryI, entriesRepo repository.EntriesRepositoryI) *UserService {
	if usersRepo == nil || entriesRepo == nil {
		log.Fatal("nil repository passed to user service")
	}
	return &UserService{
		repo:    usersRepo,
		entries: entriesRepo,
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (us *UserService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	passwordHash, err := Hash(req.Password)
	if err != nil {
		return nil, errors.New("hashing password error: " + err.Error())
	}
	err = us.repo.Create(ctx, &entity.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserExists) {
			return nil, errorvalues.ErrUserExists
		}
		return nil, errors.New("repository creating error: " + err.Error())
	}
	user, err := us.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

// Unknown email and wrong password are indistinguishable to the caller.
func (us *UserService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := us.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrWrongCredentials
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, errorvalues.ErrWrongCredentials
	}
	return user, nil
}

func (us *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*entity.User, error) {
	if req.Name == nil && req.Email == nil {
		return nil, errorvalues.ErrEmptyUpdate
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be blank", errorvalues.ErrValidation)
		}
		req.Name = &name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := validateStruct(*req); err != nil {
		return nil, err
	}
	user, err := us.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		other, err := us.repo.FindByEmail(ctx, *req.Email)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, errorvalues.ErrEmailTaken
		case err != nil && !errors.Is(err, errorvalues.ErrUserNotFound):
			return nil, errors.New("repository searching error: " + err.Error())
		}
		user.Email = *req.Email
	}
	if err = us.repo.Update(ctx, user); err != nil {
		if errors.Is(err, errorvalues.ErrEmailTaken) || errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository updating error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) ChangePassword(ctx context.Context, id uuid.UUID, req *ChangePasswordRequest) error {
	if err := validateStruct(*req); err != nil {
		return err
	}
	user, err := us.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		return errorvalues.ErrWrongCredentials
	}
	user.PasswordHash, err = Hash(req.NewPassword)
	if err != nil {
		return errors.New("hashing password error: " + err.Error())
	}
	if err = us.repo.Update(ctx, user); err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return err
		}
		return errors.New("repository updating error: " + err.Error())
	}
	return nil
}

func (us *UserService) DeleteAccount(ctx context.Context, id uuid.UUID, password string) error {
	user, err := us.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, password) {
		return errorvalues.ErrWrongCredentials
	}
	if _, err = us.entries.DeleteByOwner(ctx, user.ID); err != nil {
		return errors.New("repository entries deletion error: " + err.Error())
	}
	err = us.repo.Delete(ctx, user.ID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return errorvalues.ErrUserNotFound
		}
		return errors.New("repository deletion error: " + err.Error())
	}
	return nil
}

func (us *UserService) GetNotificationSettings(ctx context.Context, id uuid.UUID) (*entity.NotificationSettings, error) {
	settings, err := us.repo.GetNotificationSettings(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return settings, nil
}

func (us *UserService) UpdateNotificationSettings(ctx context.Context, id uuid.UUID, req *NotificationSettingsRequest) (*entity.NotificationSettings, error) {
	settings, err := us.GetNotificationSettings(ctx, id)
	if err != nil {
		return nil, err
	}
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&settings.EmailNotifications, req.EmailNotifications)
	apply(&settings.JournalReminders, req.JournalReminders)
	apply(&settings.WeeklyDigest, req.WeeklyDigest)
	apply(&settings.MoodReminders, req.MoodReminders)
	apply(&settings.AchievementAlerts, req.AchievementAlerts)
	apply(&settings.SecurityAlerts, req.SecurityAlerts)
	if err = us.repo.UpdateNotificationSettings(ctx, id, settings); err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("repository updating error: " + err.Error())
	}
	return settings, nil
}

type exportProfile struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	AccountCreated time.Time `json:"accountCreated"`
}

type exportEntry struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type exportStatistics struct {
	TotalEntries int        `json:"totalEntries"`
	OldestEntry  *time.Time `json:"oldestEntry"`
	LatestEntry  *time.Time `json:"latestEntry"`
}

type exportDocument struct {
	Profile              exportProfile               `json:"profile"`
	NotificationSettings entity.NotificationSettings `json:"notificationSettings"`
	JournalEntries       []exportEntry               `json:"journalEntries"`
	Statistics           exportStatistics            `json:"statistics"`
	ExportDate           time.Time                   `json:"exportDate"`
}

// ExportData renders the account and all its entries, newest first.
func (us *UserService) ExportData(ctx context.Context, id uuid.UUID, format ExportFormat) (*Export, error) {
	if format == "" {
		format = ExportJSON
	}
	if format != ExportJSON && format != ExportCSV {
		return nil, fmt.Errorf("%w: unsupported export format %q", errorvalues.ErrValidation, format)
	}
	user, err := us.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := us.entries.ListByOwner(ctx, id, entity.DateRange{}, false)
	if err != nil {
		return nil, errors.New("repository searching error: " + err.Error())
	}
	now := us.now().UTC()
	stamp := now.Format("2006-01-02")

	if format == ExportCSV {
		body, err := entriesCSV(entries)
		if err != nil {
			return nil, errors.New("csv encoding error: " + err.Error())
		}
		return &Export{
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("journal-export-%s.csv", stamp),
			Body:        body,
		}, nil
	}

	settings, err := us.GetNotificationSettings(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := exportDocument{
		Profile: exportProfile{
			Name:           user.Name,
			Email:          user.Email,
			AccountCreated: user.CreatedAt,
		},
		NotificationSettings: *settings,
		JournalEntries:       make([]exportEntry, 0, len(entries)),
		Statistics:           exportStatistics{TotalEntries: len(entries)},
		ExportDate:           now,
	}
	for _, e := range entries {
		doc.JournalEntries = append(doc.JournalEntries, exportEntry{
			Title:     e.Title,
			Content:   e.Content,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		})
	}
	if len(entries) > 0 {
		latest, oldest := entries[0].CreatedAt, entries[len(entries)-1].CreatedAt
		doc.Statistics.LatestEntry, doc.Statistics.OldestEntry = &latest, &oldest
	}
	body, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.New("json encoding error: " + err.Error())
	}
	return &Export{
		ContentType: "application/json",
		Filename:    fmt.Sprintf("journal-export-%s.json", stamp),
		Body:        body,
	}, nil
}

func entriesCSV(entries []*entity.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Title", "Content", "Created Date", "Updated Date"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		err := w.Write([]string{
			e.Title,
			e.Content,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.UpdatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
