package db

import (
	"context"
	"fmt"

	"dropship-hub/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Client is the shared MongoDB connection
var Client *mongo.Client

var databaseName = "dropship_hub"

// Collection names
const (
	Users            = "users"
	Products         = "products"
	Orders           = "orders"
	Withdraws        = "withdraws"
	Carts            = "carts"
	Wishlists        = "wishlists"
	Gifts            = "gifts"
	ClassRequests    = "class_requests"
	Packages         = "packages"
	PackagePurchases = "package_purchases"
	SiteContent      = "site_content"
)

// InitDB connects to MongoDB, pings it and creates the indexes the models rely on
func InitDB(cfg config.MongoConfig, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping MongoDB: %w", err)
	}

	Client = client
	if cfg.Database != "" {
		databaseName = cfg.Database
	}

	if err := ensureIndexes(ctx); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	log.Info("Connected to MongoDB", zap.String("database", databaseName))
	return nil
}

func ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "myReferralCode", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		Orders:    {{Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}}},
		Withdraws: {{Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}}},
		Carts:     {{Keys: bson.D{{Key: "email", Value: 1}}}},
		Wishlists: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		SiteContent: {{Keys: bson.D{{Key: "kind", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}
	for name, models := range indexes {
		if _, err := OpenCollection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// DisconnectDB closes the MongoDB connection
func DisconnectDB(ctx context.Context, log *zap.Logger) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Warn("Failed to disconnect MongoDB", zap.Error(err))
		return
	}
	log.Info("Disconnected from MongoDB")
}

// OpenCollection returns the named collection of the configured database
func OpenCollection(collectionName string) *mongo.Collection {
	return Client.Database(databaseName).Collection(collectionName)
}

// IsDuplicateKey reports whether err is a unique index violation
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
