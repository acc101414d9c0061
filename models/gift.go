package models

import (
	"context"
	"time"

	"dropship-hub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Gift struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

type ClassRequest struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Name      string             `json:"name" bson:"name"`
	Phone     string             `json:"phone" bson:"phone"`
	Topic     string             `json:"topic" bson:"topic"`
	Message   string             `json:"message,omitempty" bson:"message,omitempty"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Record is implemented by the flat per-email collections handled generically below
type Record interface {
	Gift | ClassRequest
}

// InsertRecord stores a new document in collection and returns its id
func InsertRecord[T Record](ctx context.Context, collection string, doc T) (primitive.ObjectID, error) {
	res, err := db.OpenCollection(collection).InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// FindRecords lists documents of collection matching filter, newest first
func FindRecords[T Record](ctx context.Context, collection string, filter bson.M) ([]T, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OpenCollection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRecordStatus updates the status field of one document
func SetRecordStatus[T Record](ctx context.Context, collection string, id primitive.ObjectID, status string) (T, error) {
	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.OpenCollection(collection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&out)
	return out, err
}
