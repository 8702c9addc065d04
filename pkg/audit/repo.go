package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection("enrollments"),
	}
}

func (r *MongoRepo) Record(entry *Entry) error {
	ctx := context.TODO()

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *MongoRepo) FindByDiscordID(discordID string) ([]*Entry, error) {
	ctx := context.TODO()

	cursor, err := r.collection.Find(ctx,
		bson.M{"discord_id": discordID},
		options.Find().SetSort(bson.M{"ended_at": -1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]*Entry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
