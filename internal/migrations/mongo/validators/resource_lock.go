package validators

import "go.mongodb.org/mongo-driver/bson"

var ResourceLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"owner",
			"expires_at",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
