package validators

import "go.mongodb.org/mongo-driver/bson"

var GuestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"email", "first_name", "last_name", "role"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"email": bson.M{
				"bsonType":  "string",
				"pattern":   "^[^A-Z]+@[^A-Z]+$",
				"maxLength": 254,
			},
			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},
			"role": bson.M{
				"enum": []string{"guest", "staff"},
			},
		},
	},
}
