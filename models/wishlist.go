package models

import (
	"context"
	"time"

	"dropship-hub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type WishlistItem struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Thumbnail string             `json:"thumbnail" bson:"thumbnail"`
	Price     float64            `json:"price" bson:"price"`
	AddedAt   time.Time          `json:"addedAt" bson:"addedAt"`
}

func GetWishlist(ctx context.Context, email string) ([]WishlistItem, error) {
	cursor, err := db.OpenCollection(db.Wishlists).Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []WishlistItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddWishlistItem inserts the item; the unique (email, productId) index rejects duplicates
func AddWishlistItem(ctx context.Context, item WishlistItem) (WishlistItem, error) {
	item.ID = primitive.NewObjectID()
	item.AddedAt = time.Now()
	_, err := db.OpenCollection(db.Wishlists).InsertOne(ctx, item)
	return item, err
}

func RemoveWishlistItem(ctx context.Context, id primitive.ObjectID, email string) error {
	res, err := db.OpenCollection(db.Wishlists).DeleteOne(ctx, bson.M{"_id": id, "email": email})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
