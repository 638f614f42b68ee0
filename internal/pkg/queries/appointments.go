package queries

import (
	"docbook-service/internal/app/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReservationFilter translates a filter into the find document, only the
// fields that are set take part in the equality match.
func ReservationFilter(filter models.ReservationFilter) bson.M {
	query := bson.M{}
	if filter.PatientID != "" {
		query["patientId"] = filter.PatientID
	}
	if filter.DoctorID != "" {
		query["doctorId"] = filter.DoctorID
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

// ReservationSnapshotSort keeps snapshots stable across reloads.
var ReservationSnapshotSort = bson.D{
	{Key: "date", Value: 1},
	{Key: "slot", Value: 1},
	{Key: "_id", Value: 1},
}

// ReservationChangeStreamPipeline matches change events whose document
// belongs to the filter. Status is left out on purpose so that a booked to
// cancelled flip still wakes up a booked-only view.
func ReservationChangeStreamPipeline(filter models.ReservationFilter) mongo.Pipeline {
	match := bson.M{
		"operationType": bson.M{"$in": bson.A{"insert", "update", "replace"}},
	}
	if filter.PatientID != "" {
		match["fullDocument.patientId"] = filter.PatientID
	}
	if filter.DoctorID != "" {
		match["fullDocument.doctorId"] = filter.DoctorID
	}
	if filter.Date != "" {
		match["fullDocument.date"] = filter.Date
	}
	return mongo.Pipeline{{{Key: "$match", Value: match}}}
}

func CancelReservationFilter(reservationID string) bson.M {
	return bson.M{
		"_id":    reservationID,
		"status": models.ReservationBooked,
	}
}

func CancelReservationUpdate(cancelledAt interface{}, cancelledBy string) bson.M {
	return bson.M{
		"$set": bson.M{
			"status":      models.ReservationCancelled,
			"cancelledAt": cancelledAt,
			"cancelledBy": cancelledBy,
		},
	}
}

func UpcomingReservationsFilter(from, to time.Time) bson.M {
	return bson.M{
		"status":        models.ReservationBooked,
		"appointmentTs": bson.M{"$gte": from, "$lt": to},
	}
}

var UpcomingReservationsSort = bson.D{
	{Key: "appointmentTs", Value: 1},
	{Key: "_id", Value: 1},
}
