package queries

import (
	"docbook-service/internal/pkg/constvars"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionIndexes lists the secondary indexes every collection needs, keyed
// by collection name.
func CollectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		constvars.MongoCollectionAccounts: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("accounts_email_unique").SetUnique(true),
			},
		},
		constvars.MongoCollectionUsers: {
			{
				Keys:    bson.D{{Key: "role", Value: 1}, {Key: "displayName", Value: 1}},
				Options: options.Index().SetName("users_role_display_name"),
			},
		},
		constvars.MongoCollectionDoctors: {
			{
				Keys:    bson.D{{Key: "displayName", Value: 1}},
				Options: options.Index().SetName("doctors_display_name"),
			},
		},
		constvars.MongoCollectionAppointments: {
			{
				Keys: bson.D{
					{Key: "doctorId", Value: 1},
					{Key: "date", Value: 1},
					{Key: "status", Value: 1},
					{Key: "slot", Value: 1},
				},
				Options: options.Index().SetName("appointments_doctor_date_status"),
			},
			{
				Keys: bson.D{
					{Key: "patientId", Value: 1},
					{Key: "date", Value: 1},
					{Key: "slot", Value: 1},
				},
				Options: options.Index().SetName("appointments_patient_date"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "appointmentTs", Value: 1}},
				Options: options.Index().SetName("appointments_status_appointment_ts"),
			},
		},
	}
}
