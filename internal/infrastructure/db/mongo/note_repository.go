package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/notekeeper/notes-api/internal/core/domain"
)

const notesCollection = "notes"

// NoteRepository implements ports.NoteRepository using MongoDB. Each document
// is a category with its items embedded.
type NoteRepository struct {
	coll *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{coll: db.Collection(notesCollection)}
}

type mongoNoteItem struct {
	ID        primitive.ObjectID `bson:"_id"`
	Text      string             `bson:"text"`
	Timestamp time.Time          `bson:"timestamp"`
}

type mongoNoteCategory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID   string             `bson:"owner_id"`
	Title     string             `bson:"title"`
	Items     []mongoNoteItem    `bson:"items"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (m mongoNoteCategory) toDomain() domain.NoteCategory {
	items := make([]domain.NoteItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.NoteItem{ID: it.ID.Hex(), Text: it.Text, Timestamp: it.Timestamp.UTC()})
	}
	return domain.NoteCategory{
		ID:        m.ID.Hex(),
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Items:     items,
		Timestamp: m.Timestamp.UTC(),
	}
}

func (r *NoteRepository) CreateCategory(ctx context.Context, category *domain.NoteCategory) (*domain.NoteCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoNoteCategory{
		OwnerID:   category.OwnerID,
		Title:     category.Title,
		Items:     []mongoNoteItem{},
		Timestamp: category.Timestamp.UTC(),
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert category: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid

	created := doc.toDomain()
	return &created, nil
}

func (r *NoteRepository) AddItem(ctx context.Context, ownerID, categoryID string, item domain.NoteItem) (*domain.NoteItem, error) {
	cid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		return nil, domain.ErrNoteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoNoteItem{ID: primitive.NewObjectID(), Text: item.Text, Timestamp: item.Timestamp.UTC()}
	filter := bson.M{"_id": cid, "owner_id": ownerID}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"items": doc}})
	if err != nil {
		return nil, fmt.Errorf("push item: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrNoteNotFound
	}

	return &domain.NoteItem{ID: doc.ID.Hex(), Text: doc.Text, Timestamp: doc.Timestamp}, nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.NoteCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoNoteCategory
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	out := make([]domain.NoteCategory, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *NoteRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the owner lookup index used by listing and cascading deletion.
func (r *NoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "timestamp", Value: 1}},
		Options: options.Index().SetName("owner_timestamp"),
	})
	return err
}
