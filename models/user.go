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

type Subscription struct {
	Plan       string    `json:"plan" bson:"plan"`
	ValidUntil time.Time `json:"validUntil" bson:"validUntil"`
}

// ReferredUser is one sign-up attributed to a referral code
type ReferredUser struct {
	Email    string    `json:"email" bson:"email"`
	Name     string    `json:"name" bson:"name"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

type StoreInfo struct {
	ShopName    string `json:"shopName" bson:"shopName"`
	ShopAddress string `json:"shopAddress" bson:"shopAddress"`
	ShopContact string `json:"shopContact" bson:"shopContact"`
	ShopImage   string `json:"shopImage,omitempty" bson:"shopImage,omitempty"`
}

type User struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	Name           string             `json:"name" bson:"name"`
	Phone          string             `json:"phone" bson:"phone"`
	Photo          string             `json:"photo,omitempty" bson:"photo,omitempty"`
	IsAdmin        bool               `json:"isAdmin" bson:"isAdmin"`
	IsMember       bool               `json:"isMember" bson:"isMember"`
	Subscription   *Subscription      `json:"subscription,omitempty" bson:"subscription,omitempty"`
	MyReferralCode string             `json:"myReferralCode" bson:"myReferralCode"`
	ReferredBy     string             `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	MyReferralUser []ReferredUser     `json:"myReferralUser" bson:"myReferralUser"`
	ReferIncome    float64            `json:"referIncome" bson:"referIncome"`
	Store          *StoreInfo         `json:"store,omitempty" bson:"store,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

func CreateUser(ctx context.Context, user User) (User, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	if user.MyReferralUser == nil {
		user.MyReferralUser = []ReferredUser{}
	}
	_, err := db.OpenCollection(db.Users).InsertOne(ctx, user)
	return user, err
}

func GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := db.OpenCollection(db.Users).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, err
}

func GetUserByID(ctx context.Context, id primitive.ObjectID) (User, error) {
	var user User
	err := db.OpenCollection(db.Users).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, err
}

func GetUserByReferralCode(ctx context.Context, code string) (User, error) {
	var user User
	err := db.OpenCollection(db.Users).FindOne(ctx, bson.M{"myReferralCode": code}).Decode(&user)
	return user, err
}

func ListUsers(ctx context.Context) ([]User, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OpenCollection(db.Users).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies a $set to the user and returns the updated document
func UpdateUser(ctx context.Context, id primitive.ObjectID, set bson.M) (User, error) {
	var user User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.OpenCollection(db.Users).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	return user, err
}

// AddReferral appends a referred user and credits the bonus in one update.
// The filter skips referrers that already list the email, so a sign-up is credited once.
func AddReferral(ctx context.Context, referrerID primitive.ObjectID, referred ReferredUser, bonus float64) (bool, error) {
	res, err := db.OpenCollection(db.Users).UpdateOne(ctx,
		bson.M{"_id": referrerID, "myReferralUser.email": bson.M{"$ne": referred.Email}},
		bson.M{
			"$push": bson.M{"myReferralUser": referred},
			"$inc":  bson.M{"referIncome": bonus},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// GrantMembership marks the user as member until the given subscription end
func GrantMembership(ctx context.Context, email string, sub Subscription) error {
	res, err := db.OpenCollection(db.Users).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"isMember": true, "subscription": sub}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ExpireMemberships clears isMember for subscriptions that ended before now
func ExpireMemberships(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.OpenCollection(db.Users).UpdateMany(ctx,
		bson.M{"isMember": true, "isAdmin": bson.M{"$ne": true}, "subscription.validUntil": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"isMember": false}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
