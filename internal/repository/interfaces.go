package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/zenjournal/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

type UsersRepositoryI interface {
	// Creates new user in database. Email must be unique
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by email. Can be used for login
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Updates user's name, email and password hash
	Update(ctx context.Context, user *entity.User) error
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
	GetNotificationSettings(ctx context.Context, uid uuid.UUID) (*entity.NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, uid uuid.UUID, settings *entity.NotificationSettings) error
}

type EntrySort string

const (
	SortNewest  EntrySort = "newest"
	SortOldest  EntrySort = "oldest"
	SortTitle   EntrySort = "title"
	SortUpdated EntrySort = "updated"
)

type FindOpts struct {
	// Case-insensitive substring matched against title and content
	Search string
	Sort   EntrySort
	Limit  int
	Offset int
}

type EntriesRepositoryI interface {
	// Stores new entry and returns its id. OwnerID, Title, Content are necessary
	Create(ctx context.Context, entry *entity.Entry) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Entry, error)
	// Replaces title, content and updated_at of entry with entry.ID
	Update(ctx context.Context, entry *entity.Entry) error
	Delete(ctx context.Context, id string) error
	// Removes every entry of the owner, returns removed count
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	// Paginated, filtered listing
	Find(ctx context.Context, ownerID uuid.UUID, opts FindOpts) ([]*entity.Entry, error)
	Count(ctx context.Context, ownerID uuid.UUID, search string) (int64, error)
	// All entries of the owner created inside period, ordered by creation time
	ListByOwner(ctx context.Context, ownerID uuid.UUID, period entity.DateRange, ascending bool) ([]*entity.Entry, error)
}

type RateLimitRepositoryI interface {
	// Increments counter for key inside a fixed window, returns the new value
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
