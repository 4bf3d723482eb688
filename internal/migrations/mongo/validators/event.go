package validators

import "go.mongodb.org/mongo-driver/bson"

var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "organizer_id", "organizer_info", "type", "blocked_courts"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":            uuidString,
			"name":           str(2, 120),
			"description":    str(0, 1000),
			"organizer_id":   nationalID,
			"organizer_info": userSnapshot,
			"type":           enum("one_off", "recurring"),
			"start":          date,
			"end":            date,

			"recurrence": bson.M{
				"bsonType": "object",
				"required": []string{"weekday", "start_time", "end_time", "until"},
				"properties": bson.M{
					"weekday":    bson.M{"bsonType": integer, "minimum": 0, "maximum": 6},
					"start_time": bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
					"end_time":   bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
					"until":      date,
				},
			},

			"blocked_courts": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items":    courtRef,
			},
		},
	},
}
