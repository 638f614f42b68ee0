package queries

import (
	"docbook-service/internal/app/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func ByID(id string) bson.M {
	return bson.M{"_id": id}
}

func ByEmail(email string) bson.M {
	return bson.M{"email": email}
}

func ByRole(role models.Role) bson.M {
	return bson.M{"role": role}
}

var DisplayNameSort = bson.D{
	{Key: "displayName", Value: 1},
	{Key: "_id", Value: 1},
}

// ProfileChangeStreamPipeline matches writes to a single profile document.
func ProfileChangeStreamPipeline(uid string) mongo.Pipeline {
	match := bson.M{
		"operationType":   bson.M{"$in": bson.A{"insert", "update", "replace"}},
		"documentKey._id": uid,
	}
	return mongo.Pipeline{{{Key: "$match", Value: match}}}
}
