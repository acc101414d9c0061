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

// SizeVariant carries the per-size pricing and stock of a product
type SizeVariant struct {
	Size     string  `json:"size" bson:"size"`
	Price    float64 `json:"price" bson:"price"`
	BuyPrice float64 `json:"buyPrice" bson:"buyPrice"`
	Profit   float64 `json:"profit" bson:"profit"`
	Stock    int     `json:"stock" bson:"stock"`
}

type Product struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Category     string             `json:"category" bson:"category"`
	Section      string             `json:"section" bson:"section"`
	Thumbnail    string             `json:"thumbnail" bson:"thumbnail"`
	Description  string             `json:"description" bson:"description"`
	Sizes        []SizeVariant      `json:"sizes" bson:"sizes"`
	Colors       []string           `json:"colors" bson:"colors"`
	SliderImages []string           `json:"sliderImages" bson:"sliderImages"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// Variant returns the size entry matching size, or the first entry when size is empty
func (p Product) Variant(size string) (SizeVariant, bool) {
	for _, v := range p.Sizes {
		if v.Size == size || size == "" {
			return v, true
		}
	}
	return SizeVariant{}, false
}

func AddProduct(ctx context.Context, product Product) (Product, error) {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	_, err := db.OpenCollection(db.Products).InsertOne(ctx, product)
	return product, err
}

func FindProducts(ctx context.Context, filter bson.M) ([]Product, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OpenCollection(db.Products).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func GetProductByID(ctx context.Context, id primitive.ObjectID) (Product, error) {
	var product Product
	err := db.OpenCollection(db.Products).FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	return product, err
}

func UpdateProduct(ctx context.Context, id primitive.ObjectID, set bson.M) (Product, error) {
	var product Product
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.OpenCollection(db.Products).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	return product, err
}

func DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	result, err := db.OpenCollection(db.Products).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DecrementStock takes qty units from one size only if that many are left
func DecrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) (bool, error) {
	res, err := db.OpenCollection(db.Products).UpdateOne(ctx,
		bson.M{"_id": id, "sizes": bson.M{"$elemMatch": bson.M{"size": size, "stock": bson.M{"$gte": qty}}}},
		bson.M{"$inc": bson.M{"sizes.$.stock": -qty}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// IncrementStock returns units to a size, used to roll back a failed checkout
func IncrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error {
	_, err := db.OpenCollection(db.Products).UpdateOne(ctx,
		bson.M{"_id": id, "sizes.size": size},
		bson.M{"$inc": bson.M{"sizes.$.stock": qty}},
	)
	return err
}

// ExistingProductIDs returns the subset of ids that still exist
func ExistingProductIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	found := make(map[primitive.ObjectID]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	cursor, err := db.OpenCollection(db.Products).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		found[doc.ID] = true
	}
	return found, cursor.Err()
}

// DistinctCategories lists every category used by a product
func DistinctCategories(ctx context.Context) ([]string, error) {
	values, err := db.OpenCollection(db.Products).Distinct(ctx, "category", bson.M{"category": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
