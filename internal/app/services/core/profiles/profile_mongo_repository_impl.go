package profiles

import (
	"context"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/app/services/shared/changefeed"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/queries"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ProfileMongoRepository struct {
	Users   *mongo.Collection
	Doctors *mongo.Collection
}

func NewProfileMongoRepository(db *mongo.Client, dbName string) contracts.ProfileRepository {
	database := db.Database(dbName)
	return &ProfileMongoRepository{
		Users:   database.Collection(constvars.MongoCollectionUsers),
		Doctors: database.Collection(constvars.MongoCollectionDoctors),
	}
}

func (repo *ProfileMongoRepository) FindByID(ctx context.Context, uid string) (*models.Profile, error) {
	var profile models.Profile
	err := repo.Users.FindOne(ctx, queries.ByID(uid)).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &profile, nil
}

func (repo *ProfileMongoRepository) FindByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	cursor, err := repo.Users.Find(ctx, queries.ByRole(role), options.Find().SetSort(queries.DisplayNameSort))
	if err != nil {
		return nil, exceptions.ErrMongoDBFindManyDocuments(err)
	}
	defer cursor.Close(ctx)

	profiles := make([]models.Profile, 0)
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, exceptions.ErrMongoDBDecodeDocument(err)
	}
	return profiles, nil
}

// UpdateProfile writes the profile and, for doctors, refreshes the directory
// listing.
func (repo *ProfileMongoRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	update := bson.M{"$set": profile.ConvertToBsonM()}
	result, err := repo.Users.UpdateOne(ctx, queries.ByID(profile.UID), update, options.Update().SetUpsert(false))
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	if result.MatchedCount == 0 {
		return exceptions.ErrUserNotExist(nil)
	}

	if profile.IsDoctor() {
		listing := models.NewDoctorListing(profile)
		_, err = repo.Doctors.ReplaceOne(ctx, queries.ByID(profile.UID), listing, options.Replace().SetUpsert(true))
		if err != nil {
			return exceptions.ErrMongoDBUpdateDocument(err)
		}
	}
	return nil
}

func (repo *ProfileMongoRepository) FindDoctorListings(ctx context.Context) ([]models.DoctorListing, error) {
	cursor, err := repo.Doctors.Find(ctx, bson.M{}, options.Find().SetSort(queries.DisplayNameSort))
	if err != nil {
		return nil, exceptions.ErrMongoDBFindManyDocuments(err)
	}
	defer cursor.Close(ctx)

	listings := make([]models.DoctorListing, 0)
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, exceptions.ErrMongoDBDecodeDocument(err)
	}
	return listings, nil
}

type profileChangeFeed struct {
	Users *mongo.Collection
	Log   *zap.Logger
}

func NewProfileChangeFeed(db *mongo.Client, dbName string, logger *zap.Logger) contracts.ProfileChangeFeed {
	return &profileChangeFeed{
		Users: db.Database(dbName).Collection(constvars.MongoCollectionUsers),
		Log:   logger,
	}
}

func (f *profileChangeFeed) Watch(ctx context.Context, uid string) (<-chan struct{}, error) {
	return changefeed.Watch(ctx, f.Users, queries.ProfileChangeStreamPipeline(uid), f.Log)
}
