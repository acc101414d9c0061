package models

import (
	"context"
	"time"

	"dropship-hub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	WithdrawPending  = "Pending"
	WithdrawApproved = "Approved"
	WithdrawRejected = "Rejected"
)

type Withdraw struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Amount        float64            `json:"amount" bson:"amount"`
	Charge        float64            `json:"charge" bson:"charge"`
	NetAmount     float64            `json:"netAmount" bson:"netAmount"`
	Source        string             `json:"source" bson:"source"`
	Status        string             `json:"status" bson:"status"`
	PaymentMethod string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentNumber string             `json:"paymentNumber" bson:"paymentNumber"`
	RequestDate   time.Time          `json:"requestDate" bson:"requestDate"`
	ApprovedDate  *time.Time         `json:"approvedDate,omitempty" bson:"approvedDate,omitempty"`
	PayoutRef     string             `json:"payoutRef,omitempty" bson:"payoutRef,omitempty"`
}

func CreateWithdraw(ctx context.Context, w Withdraw) (Withdraw, error) {
	w.ID = primitive.NewObjectID()
	w.RequestDate = time.Now()
	_, err := db.OpenCollection(db.Withdraws).InsertOne(ctx, w)
	return w, err
}

func FindWithdraws(ctx context.Context, filter bson.M) ([]Withdraw, error) {
	opts := options.Find().SetSort(bson.M{"requestDate": -1})
	cursor, err := db.OpenCollection(db.Withdraws).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ws := []Withdraw{}
	if err := cursor.All(ctx, &ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// ActiveWithdraws returns withdrawals that still count against the balance
func ActiveWithdraws(ctx context.Context, email string) ([]Withdraw, error) {
	return FindWithdraws(ctx, bson.M{
		"email":  email,
		"status": bson.M{"$in": []string{WithdrawPending, WithdrawApproved}},
	})
}

func GetWithdrawByID(ctx context.Context, id primitive.ObjectID) (Withdraw, error) {
	var w Withdraw
	err := db.OpenCollection(db.Withdraws).FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	return w, err
}

// TransitionWithdraw applies set to a withdrawal that is still Pending.
// It returns mongo.ErrNoDocuments when the withdrawal is missing or already decided.
func TransitionWithdraw(ctx context.Context, id primitive.ObjectID, set bson.M) (Withdraw, error) {
	var w Withdraw
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.OpenCollection(db.Withdraws).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": WithdrawPending},
		bson.M{"$set": set},
		opts,
	).Decode(&w)
	return w, err
}

func SetPayoutRef(ctx context.Context, id primitive.ObjectID, ref string) error {
	_, err := db.OpenCollection(db.Withdraws).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"payoutRef": ref}})
	return err
}

// RevertWithdraw puts an approved withdrawal back to Pending after a failed payout
func RevertWithdraw(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.OpenCollection(db.Withdraws).UpdateOne(ctx,
		bson.M{"_id": id, "status": WithdrawApproved},
		bson.M{"$set": bson.M{"status": WithdrawPending}, "$unset": bson.M{"approvedDate": ""}},
	)
	return err
}
