package models

import (
	"context"
	"time"

	"dropship-hub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Site content kinds, one document each
const (
	ContentTelegramGroup = "telegram_group"
	ContentWebsiteLogo   = "website_logo"
	ContentContactInfo   = "contact_info"
)

type SiteContent struct {
	Kind      string            `json:"kind" bson:"kind"`
	Fields    map[string]string `json:"fields" bson:"fields"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

func GetSiteContent(ctx context.Context, kind string) (SiteContent, error) {
	var sc SiteContent
	err := db.OpenCollection(db.SiteContent).FindOne(ctx, bson.M{"kind": kind}).Decode(&sc)
	return sc, err
}

// PutSiteContent replaces the document of kind, creating it on first write
func PutSiteContent(ctx context.Context, kind string, fields map[string]string) (SiteContent, error) {
	sc := SiteContent{Kind: kind, Fields: fields, UpdatedAt: time.Now()}
	_, err := db.OpenCollection(db.SiteContent).ReplaceOne(ctx,
		bson.M{"kind": kind}, sc, options.Replace().SetUpsert(true))
	return sc, err
}
