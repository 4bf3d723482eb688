package validators

import "go.mongodb.org/mongo-driver/bson"

// Go ints are stored as int32 when they fit and int64 otherwise.
var integer = bson.A{"int", "long"}

func str(minLength, maxLength int) bson.M {
	s := bson.M{"bsonType": "string"}
	if minLength > 0 {
		s["minLength"] = minLength
	}
	if maxLength > 0 {
		s["maxLength"] = maxLength
	}
	return s
}

func intRange(minimum int) bson.M {
	return bson.M{"bsonType": integer, "minimum": minimum}
}

func enum(values ...string) bson.M {
	return bson.M{"bsonType": "string", "enum": values}
}

var date = bson.M{"bsonType": "date"}

var nationalID = bson.M{"bsonType": "string", "pattern": `^[0-9]{11}$`}

var uuidString = bson.M{"bsonType": "string", "minLength": 36, "maxLength": 36}

var userSnapshot = bson.M{
	"bsonType": "object",
	"required": []string{"name"},
	"properties": bson.M{
		"name": str(2, 120),
	},
}

var venueSnapshot = bson.M{
	"bsonType": "object",
	"required": []string{"gymnasium_name"},
	"properties": bson.M{
		"gymnasium_name": str(2, 120),
		"court_status":   enum("available", "maintenance", "blocked"),
	},
}

var courtRef = bson.M{
	"bsonType": "object",
	"required": []string{"gymnasium_id", "court_number"},
	"properties": bson.M{
		"gymnasium_id": intRange(1),
		"court_number": intRange(1),
	},
}
