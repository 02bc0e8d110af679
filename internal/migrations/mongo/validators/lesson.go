package validators

import "go.mongodb.org/mongo-driver/bson"

var LessonValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"student_id",
			"tutor_id",
			"start_time",
			"end_time",
			"duration_min",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"student_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"tutor_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"duration_min": bson.M{
				"bsonType": "int",
				"enum":     []int{30, 60},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
