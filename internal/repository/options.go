package repository

import "go.mongodb.org/mongo-driver/mongo/options"

// findOneAndUpdateReturnAfter asks FindOneAndUpdate for the post-update
// document, so callers can return the fresh record without a second query.
func findOneAndUpdateReturnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
