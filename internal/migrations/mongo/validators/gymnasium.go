package validators

import "go.mongodb.org/mongo-driver/bson"

var GymnasiumValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "address", "capacity", "courts", "equipment"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":      intRange(1),
			"name":     str(2, 120),
			"address":  str(1, 200),
			"capacity": intRange(0),

			"courts": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"number", "floor_type", "covered", "status", "allowed_sports"},
					"properties": bson.M{
						"number":     intRange(1),
						"capacity":   intRange(0),
						"floor_type": str(1, 50),
						"covered":    bson.M{"bsonType": "bool"},
						"status":     enum("available", "maintenance", "blocked"),
						"allowed_sports": bson.M{
							"bsonType":    "array",
							"uniqueItems": true,
							"items":       intRange(1),
						},
					},
				},
			},

			"equipment": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"equipment_id", "name", "condition", "total_quantity", "available_quantity"},
					"properties": bson.M{
						"equipment_id":       intRange(1),
						"name":               str(1, 120),
						"description":        str(0, 500),
						"brand":              str(0, 80),
						"condition":          enum("good", "worn", "damaged", "maintenance"),
						"total_quantity":     intRange(0),
						"available_quantity": intRange(0),
					},
				},
			},
		},
	},
}

var SportValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "max_players"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":         intRange(1),
			"name":        str(2, 60),
			"max_players": bson.M{"bsonType": integer, "minimum": 1, "maximum": 100},
		},
	},
}
