package validators

import "go.mongodb.org/mongo-driver/bson"

var TicketValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"reporter_id",
			"reporter_info",
			"gymnasium_id",
			"court_number",
			"location_info",
			"created_at",
			"description",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":           uuidString,
			"reporter_id":   nationalID,
			"reporter_info": userSnapshot,
			"gymnasium_id":  intRange(1),
			"court_number":  intRange(1),
			"location_info": venueSnapshot,
			"created_at":    date,
			"description":   str(3, 1000),
			"status":        enum("open", "in_progress", "resolved"),
		},
	},
}
