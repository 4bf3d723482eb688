package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"name",
			"email",
			"password_hash",
			"birth_date",
			"status",
			"role",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":           nationalID,
			"name":          str(2, 120),
			"email":         bson.M{"bsonType": "string", "pattern": `^[^@\s]+@[^@\s]+$`},
			"password_hash": str(59, 60),
			"birth_date":    date,
			"status":        enum("active", "inactive"),
			"role":          enum("student", "staff", "admin"),

			"student_details": bson.M{
				"bsonType": "object",
				"required": []string{"enrollment_id", "program", "start_year", "category"},
				"properties": bson.M{
					"enrollment_id":       str(1, 30),
					"program":             str(1, 120),
					"start_year":          intRange(1950),
					"category":            enum("scholarship", "non_scholarship"),
					"stipend":             bson.M{"bsonType": "number", "exclusiveMinimum": 0},
					"weekly_hours":        intRange(1),
					"shift_start":         bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
					"shift_end":           bson.M{"bsonType": "string", "pattern": `^([01][0-9]|2[0-3]):[0-5][0-9]$`},
					"supervisor_staff_id": str(1, 30),
				},
			},

			"staff_details": bson.M{
				"bsonType": "object",
				"required": []string{"staff_id", "admission_date"},
				"properties": bson.M{
					"staff_id":       str(1, 30),
					"admission_date": date,
				},
			},

			"admin_details": bson.M{
				"bsonType": "object",
				"required": []string{"access_level", "responsibility_area"},
				"properties": bson.M{
					"access_level":        bson.M{"bsonType": integer, "minimum": 1, "maximum": 10},
					"responsibility_area": str(1, 120),
				},
			},
		},
	},
}
