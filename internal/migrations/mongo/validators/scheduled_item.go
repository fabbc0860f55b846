package validators

import "go.mongodb.org/mongo-driver/bson"

var ScheduledItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kind",
			"title",
			"trainer_id",
			"status",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum": []string{
					"formation",
					"session",
					"event",
				},
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"trainer_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"formation_type_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"participants": bson.M{
				"bsonType": "array",
				"maxItems": 500,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"planned",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"time_zone": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
