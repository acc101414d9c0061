package services

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// ProductFilter builds the product listing filter from the storefront query parameters
func ProductFilter(category, section, keyword string) bson.M {
	filter := bson.M{}
	if category = strings.TrimSpace(category); category != "" {
		filter["category"] = category
	}
	if section = strings.TrimSpace(section); section != "" {
		filter["section"] = section
	}
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		pattern := regexp.QuoteMeta(keyword)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"category": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}
