package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/soniahiltner/finance-tracker-sub001/internal/model"
)

type savingsGoalDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id"`
	Name          string             `bson:"name"`
	TargetAmount  float64            `bson:"target_amount"`
	CurrentAmount float64            `bson:"current_amount"`
	Deadline      *time.Time         `bson:"deadline,omitempty"`
	Completed     bool               `bson:"completed"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d savingsGoalDoc) toModel() model.SavingsGoal {
	return model.SavingsGoal{
		ID:            d.ID.Hex(),
		UserID:        d.UserID.Hex(),
		Name:          d.Name,
		TargetAmount:  d.TargetAmount,
		CurrentAmount: d.CurrentAmount,
		Deadline:      d.Deadline,
		Completed:     d.Completed,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// SavingsGoalRepo persists savings goals.
type SavingsGoalRepo struct{ col *mongodriver.Collection }

func NewSavingsGoalRepo(col *mongodriver.Collection) *SavingsGoalRepo {
	return &SavingsGoalRepo{col: col}
}

// Create inserts a goal with zero progress.
func (r *SavingsGoalRepo) Create(ctx context.Context, g model.SavingsGoal) (*model.SavingsGoal, error) {
	userOID, err := primitive.ObjectIDFromHex(g.UserID)
	if err != nil {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	doc := savingsGoalDoc{
		UserID:       userOID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		Deadline:     g.Deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("savings_goals: unexpected inserted id type")
	}
	doc.ID = oid
	out := doc.toModel()
	return &out, nil
}

// List returns all of the user's goals, newest first.
func (r *SavingsGoalRepo) List(ctx context.Context, userID string) ([]model.SavingsGoal, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	cur, err := r.col.Find(ctx,
		bson.D{{Key: "user_id", Value: userOID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.SavingsGoal{}
	for cur.Next(ctx) {
		var doc savingsGoalDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toModel())
	}
	return out, cur.Err()
}

// FindByID fetches one goal owned by the user.
func (r *SavingsGoalRepo) FindByID(ctx context.Context, userID, id string) (*model.SavingsGoal, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}
	var doc savingsGoalDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// Update applies the non-nil fields and returns the updated goal.
func (r *SavingsGoalRepo) Update(ctx context.Context, userID, id string, upd model.SavingsGoalUpdate) (*model.SavingsGoal, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if upd.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *upd.Name})
	}
	if upd.TargetAmount != nil {
		set = append(set, bson.E{Key: "target_amount", Value: *upd.TargetAmount})
	}
	if upd.Deadline != nil {
		set = append(set, bson.E{Key: "deadline", Value: upd.Deadline.UTC()})
	}
	res := r.col.FindOneAndUpdate(ctx, filter,
		bson.D{{Key: "$set", Value: set}},
		findOneAndUpdateReturnAfter(),
	)
	var doc savingsGoalDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// AddProgress atomically increments the goal's current amount and flips the
// completed flag once the target is reached. Returns the updated goal.
func (r *SavingsGoalRepo) AddProgress(ctx context.Context, userID, id string, amount float64) (*model.SavingsGoal, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}
	res := r.col.FindOneAndUpdate(ctx, filter,
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "current_amount", Value: amount}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
		},
		findOneAndUpdateReturnAfter(),
	)
	var doc savingsGoalDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !doc.Completed && doc.TargetAmount > 0 && doc.CurrentAmount >= doc.TargetAmount {
		_, _ = r.col.UpdateOne(ctx, filter, bson.D{
			{Key: "$set", Value: bson.D{{Key: "completed", Value: true}}},
		})
		doc.Completed = true
	}
	out := doc.toModel()
	return &out, nil
}

// Delete removes one goal owned by the user.
func (r *SavingsGoalRepo) Delete(ctx context.Context, userID, id string) error {
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
