package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_number",
			"room_id",
			"owner_id",
			"owner_email",
			"start_date",
			"end_date",
			"status",
			"paid",
			"payment_method",
			"total_amount",
			"currency",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_number": bson.M{
				"bsonType": "string",
				"pattern":  "^BK-[0-9]{8}-[0-9A-F]{8}$",
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"owner_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"PENDING", "ACTIVE", "COMPLETED", "CANCELLED"},
			},

			"paid": bson.M{
				"bsonType": "bool",
			},

			"payment_method": bson.M{
				"enum": []string{"card", "on_site"},
			},

			"payment_session_id": bson.M{
				"bsonType": "string",
			},

			"payment_intent_id": bson.M{
				"bsonType": "string",
			},

			"presence_version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"total_amount": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"cancellation_date": bson.M{
				"bsonType": "date",
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
