package models

import (
	"context"
	"time"

	"dropship-hub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Size      string             `json:"size" bson:"size"`
	Color     string             `json:"color" bson:"color"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Subtotal  float64            `json:"subtotal" bson:"subtotal"`
}

type Payment struct {
	Method        string `json:"method" bson:"method"`
	Number        string `json:"number" bson:"number"`
	TransactionID string `json:"transactionId" bson:"transactionId"`
}

type Delivery struct {
	Name     string `json:"name" bson:"name"`
	Phone    string `json:"phone" bson:"phone"`
	Address  string `json:"address" bson:"address"`
	District string `json:"district" bson:"district"`
	Note     string `json:"note,omitempty" bson:"note,omitempty"`
}

type Order struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	Items          []OrderItem        `json:"items" bson:"items"`
	Subtotal       float64            `json:"subtotal" bson:"subtotal"`
	DeliveryCharge float64            `json:"deliveryCharge" bson:"deliveryCharge"`
	Total          float64            `json:"total" bson:"total"`
	SellingPrice   float64            `json:"amar_bikri_mullo" bson:"amar_bikri_mullo"`
	Status         string             `json:"status" bson:"status"`
	Payment        Payment            `json:"payment" bson:"payment"`
	Delivery       Delivery           `json:"delivery" bson:"delivery"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func CreateOrder(ctx context.Context, order Order) (Order, error) {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	_, err := db.OpenCollection(db.Orders).InsertOne(ctx, order)
	return order, err
}

func FindOrders(ctx context.Context, filter bson.M) ([]Order, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OpenCollection(db.Orders).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func GetOrderByID(ctx context.Context, id primitive.ObjectID) (Order, error) {
	var order Order
	err := db.OpenCollection(db.Orders).FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	return order, err
}

func UpdateOrder(ctx context.Context, id primitive.ObjectID, set bson.M) (Order, error) {
	set["updatedAt"] = time.Now()
	var order Order
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.OpenCollection(db.Orders).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&order)
	return order, err
}

// DeliveredOrders returns the user's orders whose status is Delivered in any letter case
func DeliveredOrders(ctx context.Context, email string) ([]Order, error) {
	return FindOrders(ctx, bson.M{
		"email":  email,
		"status": primitive.Regex{Pattern: "^delivered$", Options: "i"},
	})
}
