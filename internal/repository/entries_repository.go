package repository

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/pkg/cleanup"
	"github.com/limbo/zenjournal/pkg/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const entriesCollection = "entries"

type MongoCfg struct {
	URI string
	DB  string
}

type entryDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID   string             `bson:"owner_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *entryDocument) toEntity() (*entity.Entry, error) {
	owner, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, errors.New("invalid owner id in entry " + d.ID.Hex() + ": " + err.Error())
	}
	return &entity.Entry{
		ID:        d.ID.Hex(),
		OwnerID:   owner,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type EntriesRepository struct {
	coll *mongo.Collection
}

func NewEntriesRepo(cfg MongoCfg) *EntriesRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		log.Fatal("creating mongo client for entriesRepo error: " + err.Error())
	}
	if err = client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		log.Fatal("error while pinging mongo for entriesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "disconnecting mongo client",
		F:    client.Disconnect,
	})
	repo := NewEntriesRepoWithDB(client.Database(cfg.DB))
	if err = repo.EnsureIndexes(ctx); err != nil {
		log.Fatal("creating entries indexes error: " + err.Error())
	}
	return repo
}

func NewEntriesRepoWithDB(db *mongo.Database) *EntriesRepository {
	return &EntriesRepository{
		coll: db.Collection(entriesCollection),
	}
}

func (er *EntriesRepository) EnsureIndexes(ctx context.Context) error {
	_, err := er.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_owner_created"),
		},
	})
	if err != nil {
		return errors.New("repository error: " + err.Error())
	}
	return nil
}

func (er *EntriesRepository) Create(ctx context.Context, entry *entity.Entry) (string, error) {
	if entry == nil {
		return "", errors.New("entry is nil")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.UpdatedAt = entry.CreatedAt
	doc := entryDocument{
		ID:        primitive.NewObjectID(),
		OwnerID:   entry.OwnerID.String(),
		Title:     entry.Title,
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
	if _, err := er.coll.InsertOne(ctx, doc); err != nil {
		return "", errors.New("repository error: " + err.Error())
	}
	entry.ID = doc.ID.Hex()
	return entry.ID, nil
}

func (er *EntriesRepository) GetByID(ctx context.Context, id string) (*entity.Entry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errorvalues.ErrEntryNotFound
	}
	var doc entryDocument
	err = er.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errorvalues.ErrEntryNotFound
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	return doc.toEntity()
}

func (er *EntriesRepository) Update(ctx context.Context, entry *entity.Entry) error {
	oid, err := primitive.ObjectIDFromHex(entry.ID)
	if err != nil {
		return errorvalues.ErrEntryNotFound
	}
	res, err := er.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":      entry.Title,
		"content":    entry.Content,
		"updated_at": entry.UpdatedAt,
	}})
	if err != nil {
		return errors.New("repository error: " + err.Error())
	}
	if res.MatchedCount == 0 {
		return errorvalues.ErrEntryNotFound
	}
	return nil
}

func (er *EntriesRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errorvalues.ErrEntryNotFound
	}
	res, err := er.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.New("repository error: " + err.Error())
	}
	if res.DeletedCount == 0 {
		return errorvalues.ErrEntryNotFound
	}
	return nil
}

func (er *EntriesRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	res, err := er.coll.DeleteMany(ctx, bson.M{"owner_id": ownerID.String()})
	if err != nil {
		return 0, errors.New("repository error: " + err.Error())
	}
	return res.DeletedCount, nil
}

func ownerFilter(ownerID uuid.UUID, search string) bson.M {
	filter := bson.M{"owner_id": ownerID.String()}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}
	return filter
}

func sortSpec(s EntrySort) bson.D {
	switch s {
	case SortOldest:
		return bson.D{{Key: "created_at", Value: 1}}
	case SortTitle:
		return bson.D{{Key: "title", Value: 1}, {Key: "created_at", Value: -1}}
	case SortUpdated:
		return bson.D{{Key: "updated_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (er *EntriesRepository) Find(ctx context.Context, ownerID uuid.UUID, opts FindOpts) ([]*entity.Entry, error) {
	findOpts := options.Find().SetSort(sortSpec(opts.Sort))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	return er.find(ctx, ownerFilter(ownerID, opts.Search), findOpts)
}

func (er *EntriesRepository) Count(ctx context.Context, ownerID uuid.UUID, search string) (int64, error) {
	n, err := er.coll.CountDocuments(ctx, ownerFilter(ownerID, search))
	if err != nil {
		return 0, errors.New("repository error: " + err.Error())
	}
	return n, nil
}

func (er *EntriesRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, period entity.DateRange, ascending bool) ([]*entity.Entry, error) {
	filter := ownerFilter(ownerID, "")
	created := bson.M{}
	if !period.From.IsZero() {
		created["$gte"] = period.From
	}
	if !period.To.IsZero() {
		created["$lt"] = period.To
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}
	direction := -1
	if ascending {
		direction = 1
	}
	return er.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: direction}}))
}

func (er *EntriesRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Entry, error) {
	cursor, err := er.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	defer cursor.Close(ctx)
	var docs []entryDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	entries := make([]*entity.Entry, 0, len(docs))
	for i := range docs {
		e, err := docs[i].toEntity()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
