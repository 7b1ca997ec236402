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

type transactionDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id"`
	Type        string              `bson:"type"`
	Amount      float64             `bson:"amount"`
	CategoryID  *primitive.ObjectID `bson:"category_id,omitempty"`
	Description string              `bson:"description,omitempty"`
	Date        time.Time           `bson:"date"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

func (d transactionDoc) toModel() model.Transaction {
	t := model.Transaction{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		Date:        d.Date,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.CategoryID != nil {
		t.CategoryID = d.CategoryID.Hex()
	}
	return t
}

// TransactionRepo persists transactions. Every query is scoped to the
// owning user; a transaction is invisible to anyone else.
type TransactionRepo struct{ col *mongodriver.Collection }

func NewTransactionRepo(col *mongodriver.Collection) *TransactionRepo {
	return &TransactionRepo{col: col}
}

// Create inserts a transaction and returns the stored record.
func (r *TransactionRepo) Create(ctx context.Context, t model.Transaction) (*model.Transaction, error) {
	userOID, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	doc := transactionDoc{
		UserID:      userOID,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.CategoryID != "" {
		catOID, err := primitive.ObjectIDFromHex(t.CategoryID)
		if err != nil {
			return nil, ErrNotFound
		}
		doc.CategoryID = &catOID
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("transactions: unexpected inserted id type")
	}
	doc.ID = oid
	out := doc.toModel()
	return &out, nil
}

func ownerFilter(userID, id string) (bson.D, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: userOID}}, nil
}

// FindByID fetches one transaction owned by the user.
func (r *TransactionRepo) FindByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}
	var doc transactionDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// List returns a page of the user's transactions matching the filter,
// newest first, plus the total match count for pagination.
func (r *TransactionRepo) List(ctx context.Context, userID string, f model.TransactionFilter) ([]model.Transaction, int64, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, 0, ErrNotFound
	}
	filter := bson.D{{Key: "user_id", Value: userOID}}
	if f.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: f.Type})
	}
	if f.CategoryID != "" {
		catOID, err := primitive.ObjectIDFromHex(f.CategoryID)
		if err != nil {
			return nil, 0, ErrNotFound
		}
		filter = append(filter, bson.E{Key: "category_id", Value: catOID})
	}
	dateRange := bson.D{}
	if !f.From.IsZero() {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: f.From.UTC()})
	}
	if !f.To.IsZero() {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: f.To.UTC()})
	}
	if len(dateRange) > 0 {
		filter = append(filter, bson.E{Key: "date", Value: dateRange})
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := make([]model.Transaction, 0, limit)
	for cur.Next(ctx) {
		var doc transactionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies the non-nil fields and returns the updated record.
func (r *TransactionRepo) Update(ctx context.Context, userID, id string, upd model.TransactionUpdate) (*model.Transaction, error) {
	filter, err := ownerFilter(userID, id)
	if err != nil {
		return nil, err
	}
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if upd.Type != nil {
		set = append(set, bson.E{Key: "type", Value: *upd.Type})
	}
	if upd.Amount != nil {
		set = append(set, bson.E{Key: "amount", Value: *upd.Amount})
	}
	if upd.CategoryID != nil {
		catOID, err := primitive.ObjectIDFromHex(*upd.CategoryID)
		if err != nil {
			return nil, ErrNotFound
		}
		set = append(set, bson.E{Key: "category_id", Value: catOID})
	}
	if upd.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *upd.Description})
	}
	if upd.Date != nil {
		set = append(set, bson.E{Key: "date", Value: upd.Date.UTC()})
	}
	res := r.col.FindOneAndUpdate(ctx, filter,
		bson.D{{Key: "$set", Value: set}},
		findOneAndUpdateReturnAfter(),
	)
	var doc transactionDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := doc.toModel()
	return &out, nil
}

// Delete removes one transaction owned by the user.
func (r *TransactionRepo) Delete(ctx context.Context, userID, id string) error {
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

// Stats aggregates the user's transactions into income/expense totals and a
// per-category breakdown, optionally bounded by a date range.
func (r *TransactionRepo) Stats(ctx context.Context, userID string, from, to time.Time) (*model.TransactionStats, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	match := bson.D{{Key: "user_id", Value: userOID}}
	dateRange := bson.D{}
	if !from.IsZero() {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: from.UTC()})
	}
	if !to.IsZero() {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: to.UTC()})
	}
	if len(dateRange) > 0 {
		match = append(match, bson.E{Key: "date", Value: dateRange})
	}

	pipeline := mongodriver.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "category", Value: "$category_id"},
				{Key: "type", Value: "$type"},
			}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	type groupRow struct {
		ID struct {
			Category *primitive.ObjectID `bson:"category"`
			Type     string              `bson:"type"`
		} `bson:"_id"`
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}

	stats := &model.TransactionStats{ByCategory: []model.CategoryTotal{}}
	for cur.Next(ctx) {
		var row groupRow
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		switch row.ID.Type {
		case model.TypeIncome:
			stats.Income += row.Total
		case model.TypeExpense:
			stats.Expense += row.Total
		}
		ct := model.CategoryTotal{Type: row.ID.Type, Total: row.Total, Count: row.Count}
		if row.ID.Category != nil {
			ct.CategoryID = row.ID.Category.Hex()
		}
		stats.ByCategory = append(stats.ByCategory, ct)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	stats.Balance = stats.Income - stats.Expense
	return stats, nil
}
