// Package database owns the MongoDB connection and collection handles.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultDBName = "finance_tracker"

// Mongo is a thin adapter around the driver exposing the collections the
// repositories work with.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database

	Users        *mongodriver.Collection
	Transactions *mongodriver.Collection
	Categories   *mongodriver.Collection
	SavingsGoals *mongodriver.Collection
}

// New connects to MongoDB, pings it and ensures the indexes the app relies
// on. The database name comes from the URI path, falling back to
// "finance_tracker".
func New(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty connection URI")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(uri))
	m := &Mongo{
		client:       cli,
		db:           db,
		Users:        db.Collection("users"),
		Transactions: db.Collection("transactions"),
		Categories:   db.Collection("categories"),
		SavingsGoals: db.Collection("savings_goals"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}
	return m, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes creates the indexes the queries depend on:
//   - unique email on users (duplicate registration check)
//   - per-user transaction listing sorted by date
//   - unique (user, name, type) on categories
//   - per-user savings goal listing
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	if _, err := m.Users.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo ensure users indexes: %w", err)
	}

	if _, err := m.Transactions.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
		Options: options.Index().SetName("user_date_desc"),
	}); err != nil {
		return fmt.Errorf("mongo ensure transactions indexes: %w", err)
	}

	if _, err := m.Categories.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().SetName("uniq_user_name_type").SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo ensure categories indexes: %w", err)
	}

	if _, err := m.SavingsGoals.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_created_desc"),
	}); err != nil {
		return fmt.Errorf("mongo ensure savings_goals indexes: %w", err)
	}
	return nil
}

// databaseFromURI extracts the database name from the mongodb URI path,
// returning a sensible default when absent.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
