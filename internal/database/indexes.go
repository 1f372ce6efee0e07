package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

// EnsureTokenIndexes keeps at most one live token per (userId, purpose) and
// lets Mongo collect expired tokens nobody ever read. Consumed and expired-
// on-read tokens are still deleted eagerly by the auth service.
func EnsureTokenIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("verification_tokens").Indexes()

	userPurposeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "purpose", Value: 1}},
		Options: options.Index().
			SetName("userId_purpose_unique").
			SetUnique(true),
	}

	ttlIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().
			SetName("expiresAt_ttl").
			SetExpireAfterSeconds(0),
	}

	log.Println("EnsureTokenIndexes: creating token indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{userPurposeIndex, ttlIndex})
	if err != nil {
		log.Println("EnsureTokenIndexes: token index error:", err)
		return err
	}
	log.Println("EnsureTokenIndexes: token indexes created")
	return nil
}
