package validators

import "go.mongodb.org/mongo-driver/bson"

var CheckInValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"booking_id", "guest_id", "guest_email", "profile", "document", "checked_in_at"},
		"properties": bson.M{
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"guest_id": bson.M{
				"bsonType": "string",
			},
			"guest_email": bson.M{
				"bsonType": "string",
			},
			"profile": bson.M{
				"bsonType": "object",
				"required": []string{"first_name", "last_name", "birth_date", "nationality", "document_type", "document_number"},
				"properties": bson.M{
					"nationality": bson.M{
						"bsonType": "string",
						"pattern":  "^[A-Z]{2}$",
					},
					"document_type": bson.M{
						"enum": []string{"passport", "id_card", "driving_license"},
					},
					"document_number": bson.M{
						"bsonType": "string",
						"pattern":  "^[A-Z0-9]{5,20}$",
					},
				},
			},
			"document": bson.M{
				"bsonType": "binData",
			},
			"checked_in_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var CheckOutValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"booking_id", "guest_email", "reason", "checked_out_at"},
		"properties": bson.M{
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"guest_email": bson.M{
				"bsonType": "string",
			},
			"reason": bson.M{
				"enum": []string{"manual", "auto"},
			},
			"checked_out_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var RoomInviteValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"booking_id", "inviter_email", "invitee_email", "created_at"},
		"properties": bson.M{
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"inviter_email": bson.M{
				"bsonType": "string",
			},
			"invitee_email": bson.M{
				"bsonType": "string",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
