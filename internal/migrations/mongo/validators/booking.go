package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"requester_id",
			"requester_info",
			"gymnasium_id",
			"court_number",
			"location_info",
			"requested_at",
			"start",
			"end",
			"status",
			"equipment",
			"equipment_held",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":            uuidString,
			"requester_id":   nationalID,
			"requester_info": userSnapshot,
			"gymnasium_id":   intRange(1),
			"court_number":   intRange(1),
			"location_info":  venueSnapshot,
			"requested_at":   date,
			"start":          date,
			"end":            date,
			"reason":         str(0, 300),
			"status":         enum("pending", "confirmed", "cancelled", "completed", "no_show"),
			"operator_id":    nationalID,
			"equipment_held": bson.M{"bsonType": "bool"},

			"equipment": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"equipment_id", "quantity"},
					"properties": bson.M{
						"equipment_id": intRange(1),
						"name":         str(0, 120),
						"quantity":     intRange(1),
					},
				},
			},
		},
	},
}
