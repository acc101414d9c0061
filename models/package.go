package models

import (
	"context"
	"time"

	"dropship-hub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Package is a membership tier
type Package struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Price        float64            `json:"price" bson:"price"`
	DurationDays int                `json:"durationDays" bson:"durationDays"`
	Features     []string           `json:"features" bson:"features"`
	Active       bool               `json:"active" bson:"active"`
}

const (
	PurchasePending  = "Pending"
	PurchaseApproved = "Approved"
	PurchaseRejected = "Rejected"
)

type PackagePurchase struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	PackageID   primitive.ObjectID `json:"packageId" bson:"packageId"`
	PackageName string             `json:"packageName" bson:"packageName"`
	Price       float64            `json:"price" bson:"price"`
	Payment     Payment            `json:"payment" bson:"payment"`
	Status      string             `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	ApprovedAt  *time.Time         `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
}

func CreatePackage(ctx context.Context, p Package) (Package, error) {
	p.ID = primitive.NewObjectID()
	_, err := db.OpenCollection(db.Packages).InsertOne(ctx, p)
	return p, err
}

func FindPackages(ctx context.Context, onlyActive bool) ([]Package, error) {
	filter := bson.M{}
	if onlyActive {
		filter["active"] = true
	}
	cursor, err := db.OpenCollection(db.Packages).Find(ctx, filter, options.Find().SetSort(bson.M{"price": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pkgs := []Package{}
	if err := cursor.All(ctx, &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

func GetPackageByID(ctx context.Context, id primitive.ObjectID) (Package, error) {
	var p Package
	err := db.OpenCollection(db.Packages).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, err
}

func UpdatePackage(ctx context.Context, id primitive.ObjectID, set bson.M) (Package, error) {
	var p Package
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.OpenCollection(db.Packages).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	return p, err
}

func CreatePackagePurchase(ctx context.Context, pp PackagePurchase) (PackagePurchase, error) {
	pp.ID = primitive.NewObjectID()
	pp.CreatedAt = time.Now()
	pp.Status = PurchasePending
	_, err := db.OpenCollection(db.PackagePurchases).InsertOne(ctx, pp)
	return pp, err
}

func FindPackagePurchases(ctx context.Context, filter bson.M) ([]PackagePurchase, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OpenCollection(db.PackagePurchases).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []PackagePurchase{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecidePackagePurchase moves a Pending purchase to Approved or Rejected
func DecidePackagePurchase(ctx context.Context, id primitive.ObjectID, status string) (PackagePurchase, error) {
	set := bson.M{"status": status}
	if status == PurchaseApproved {
		set["approvedAt"] = time.Now()
	}
	var pp PackagePurchase
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.OpenCollection(db.PackagePurchases).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": PurchasePending},
		bson.M{"$set": set},
		opts,
	).Decode(&pp)
	return pp, err
}

// RevertPackagePurchase puts an Approved purchase back to Pending
func RevertPackagePurchase(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.OpenCollection(db.PackagePurchases).UpdateOne(ctx,
		bson.M{"_id": id, "status": PurchaseApproved},
		bson.M{"$set": bson.M{"status": PurchasePending}, "$unset": bson.M{"approvedAt": ""}},
	)
	return err
}
