package reservations

import (
	"context"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/changefeed"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/queries"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

var errKeyTaken = errors.New("reservation key already taken")

type ReservationMongoRepository struct {
	Collection *mongo.Collection
	now        func() time.Time
}

func NewReservationMongoRepository(db *mongo.Client, dbName string) contracts.ReservationRepository {
	return &ReservationMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAppointments),
		now:        time.Now,
	}
}

// InsertIfAbsent reads the key and inserts inside one transaction. A key that
// was ever used, booked or cancelled, is never handed out again. CreatedAt is
// assigned inside the transaction.
func (repo *ReservationMongoRepository) InsertIfAbsent(ctx context.Context, reservation *models.Reservation) error {
	session, err := repo.Collection.Database().Client().StartSession()
	if err != nil {
		return exceptions.ErrStoreUnavailable(err)
	}
	defer session.EndSession(ctx)

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		err := repo.Collection.FindOne(sessCtx, queries.ByID(reservation.ID)).Err()
		if err == nil {
			return nil, errKeyTaken
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		reservation.CreatedAt = repo.now()
		_, err = repo.Collection.InsertOne(sessCtx, reservation)
		return nil, err
	}, txnOptions)

	return mapTransactionError(err)
}

// mapTransactionError turns the outcome of the booking transaction into the
// domain error kinds: a taken key is Conflict, connectivity is Unavailable.
func mapTransactionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errKeyTaken), mongo.IsDuplicateKeyError(err):
		return exceptions.ErrSlotAlreadyBooked(nil)
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return exceptions.ErrStoreUnavailable(err)
	default:
		return exceptions.ErrMongoDBTransaction(err)
	}
}

func (repo *ReservationMongoRepository) FindByID(ctx context.Context, reservationID string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := repo.Collection.FindOne(ctx, queries.ByID(reservationID)).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &reservation, nil
}

func (repo *ReservationMongoRepository) FindByFilter(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	cursor, err := repo.Collection.Find(ctx, queries.ReservationFilter(filter), options.Find().SetSort(queries.ReservationSnapshotSort))
	if err != nil {
		return nil, exceptions.ErrMongoDBFindManyDocuments(err)
	}
	defer cursor.Close(ctx)

	reservations := make([]models.Reservation, 0)
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, exceptions.ErrMongoDBDecodeDocument(err)
	}
	return reservations, nil
}

func (repo *ReservationMongoRepository) MarkCancelled(ctx context.Context, reservationID string, cancelledAt time.Time, cancelledBy string) (bool, error) {
	result, err := repo.Collection.UpdateOne(
		ctx,
		queries.CancelReservationFilter(reservationID),
		queries.CancelReservationUpdate(cancelledAt, cancelledBy),
	)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.ModifiedCount == 1, nil
}

func (repo *ReservationMongoRepository) FindUpcoming(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	cursor, err := repo.Collection.Find(ctx, queries.UpcomingReservationsFilter(from, to), options.Find().SetSort(queries.UpcomingReservationsSort))
	if err != nil {
		return nil, exceptions.ErrMongoDBFindManyDocuments(err)
	}
	defer cursor.Close(ctx)

	reservations := make([]models.Reservation, 0)
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, exceptions.ErrMongoDBDecodeDocument(err)
	}
	return reservations, nil
}

type reservationChangeFeed struct {
	Collection *mongo.Collection
	Log        *zap.Logger
}

func NewReservationChangeFeed(db *mongo.Client, dbName string, logger *zap.Logger) contracts.ReservationChangeFeed {
	return &reservationChangeFeed{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAppointments),
		Log:        logger,
	}
}

func (f *reservationChangeFeed) Watch(ctx context.Context, filter models.ReservationFilter) (<-chan struct{}, error) {
	return changefeed.Watch(ctx, f.Collection, queries.ReservationChangeStreamPipeline(filter), f.Log)
}
