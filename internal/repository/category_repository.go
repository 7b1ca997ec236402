package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
)

type categoryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Name      string             `bson:"name"`
	Type      string             `bson:"type"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d categoryDoc) toModel() model.Category {
	return model.Category{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Name:      d.Name,
		Type:      d.Type,
		CreatedAt: d.CreatedAt,
	}
}

// CategoryRepo persists per-user transaction categories.
type CategoryRepo struct{ col *mongodriver.Collection }

func NewCategoryRepo(col *mongodriver.Collection) *CategoryRepo { return &CategoryRepo{col: col} }

// Create inserts a category; (user, name, type) is unique.
func (r *CategoryRepo) Create(ctx context.Context, userID, name, typ string) (*model.Category, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	doc := categoryDoc{
		UserID:    userOID,
		Name:      strings.TrimSpace(name),
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("categories: unexpected inserted id type")
	}
	doc.ID = oid
	out := doc.toModel()
	return &out, nil
}

// List returns all of the user's categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context, userID string) ([]model.Category, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	cur, err := r.col.Find(ctx,
		bson.D{{Key: "user_id", Value: userOID}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Category{}
	for cur.Next(ctx) {
		var doc categoryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toModel())
	}
	return out, cur.Err()
}

// Update renames and/or retypes a category owned by the user.
func (r *CategoryRepo) Update(ctx context.Context, userID, id, name, typ string) (*model.Category, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}
	set := bson.D{}
	if name = strings.TrimSpace(name); name != "" {
		set = append(set, bson.E{Key: "name", Value: name})
	}
	if typ != "" {
		set = append(set, bson.E{Key: "type", Value: typ})
	}
	if len(set) == 0 {
		return r.FindByID(ctx, userID, id)
	}
	res := r.col.FindOneAndUpdate(ctx, filter,
		bson.D{{Key: "$set", Value: set}},
		findOneAndUpdateReturnAfter(),
	)
	var doc categoryDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// FindByID fetches one category owned by the user.
func (r *CategoryRepo) FindByID(ctx context.Context, userID, id string) (*model.Category, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}
	var doc categoryDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// Delete removes one category owned by the user.
func (r *CategoryRepo) Delete(ctx context.Context, userID, id string) error {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
