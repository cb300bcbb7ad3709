package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"phone_number",
			"age",
			"pincode",
			"aadhar_no",
			"password",
			"vaccination_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"phone_number": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{6,14}$`,
			},

			"age": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  150,
			},

			"pincode": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{6}$`,
			},

			"aadhar_no": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{12}$`,
			},

			"password": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"vaccination_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"none",
					"first-dose-completed",
					"all-completed",
				},
			},

			"registered_slot": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
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
