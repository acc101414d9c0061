package models

import (
	"context"
	"time"

	"dropship-hub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CartItem is one line of a user's cart. Stock is the product stock seen when the item was added.
type CartItem struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Thumbnail string             `json:"thumbnail" bson:"thumbnail"`
	Size      string             `json:"size" bson:"size"`
	Color     string             `json:"color" bson:"color"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Stock     int                `json:"stock" bson:"stock"`
	AddedAt   time.Time          `json:"addedAt" bson:"addedAt"`
}

func GetCartItemsByEmail(ctx context.Context, email string) ([]CartItem, error) {
	opts := options.Find().SetSort(bson.M{"addedAt": 1})
	cursor, err := db.OpenCollection(db.Carts).Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []CartItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func GetCartItem(ctx context.Context, id primitive.ObjectID, email string) (CartItem, error) {
	var item CartItem
	err := db.OpenCollection(db.Carts).FindOne(ctx, bson.M{"_id": id, "email": email}).Decode(&item)
	return item, err
}

// FindCartLine finds an existing line for the same product, size and color
func FindCartLine(ctx context.Context, email string, productID primitive.ObjectID, size, color string) (CartItem, error) {
	var item CartItem
	err := db.OpenCollection(db.Carts).FindOne(ctx, bson.M{
		"email":     email,
		"productId": productID,
		"size":      size,
		"color":     color,
	}).Decode(&item)
	return item, err
}

func AddCartItem(ctx context.Context, item CartItem) (CartItem, error) {
	item.ID = primitive.NewObjectID()
	item.AddedAt = time.Now()
	_, err := db.OpenCollection(db.Carts).InsertOne(ctx, item)
	return item, err
}

// SetCartQuantity stores a new quantity and refreshes the stock snapshot
func SetCartQuantity(ctx context.Context, id primitive.ObjectID, quantity, stock int) error {
	res, err := db.OpenCollection(db.Carts).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"quantity": quantity, "stock": stock}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func RemoveCartItem(ctx context.Context, id primitive.ObjectID, email string) error {
	res, err := db.OpenCollection(db.Carts).DeleteOne(ctx, bson.M{"_id": id, "email": email})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func ClearCart(ctx context.Context, email string, ids []primitive.ObjectID) error {
	_, err := db.OpenCollection(db.Carts).DeleteMany(ctx, bson.M{"email": email, "_id": bson.M{"$in": ids}})
	return err
}

// DistinctCartProductIDs lists every product referenced by any cart
func DistinctCartProductIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := db.OpenCollection(db.Carts).Distinct(ctx, "productId", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// RemoveCartItemsForProducts drops cart lines pointing at the given products
func RemoveCartItemsForProducts(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := db.OpenCollection(db.Carts).DeleteMany(ctx, bson.M{"productId": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
