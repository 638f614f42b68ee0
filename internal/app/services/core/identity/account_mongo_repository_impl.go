package identity

import (
	"context"
	"docbook-service/internal/app/contracts"
	"docbook-service/internal/app/models"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"docbook-service/internal/pkg/queries"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type AccountMongoRepository struct {
	Client   *mongo.Client
	Accounts *mongo.Collection
	Users    *mongo.Collection
	Doctors  *mongo.Collection
}

func NewAccountMongoRepository(db *mongo.Client, dbName string) contracts.AccountRepository {
	database := db.Database(dbName)
	return &AccountMongoRepository{
		Client:   db,
		Accounts: database.Collection(constvars.MongoCollectionAccounts),
		Users:    database.Collection(constvars.MongoCollectionUsers),
		Doctors:  database.Collection(constvars.MongoCollectionDoctors),
	}
}

func (repo *AccountMongoRepository) CreateAccount(ctx context.Context, account *models.Account, profile *models.Profile) error {
	session, err := repo.Client.StartSession()
	if err != nil {
		return exceptions.ErrStoreUnavailable(err)
	}
	defer session.EndSession(ctx)

	txnOptions := options.Transaction().SetWriteConcern(writeconcern.Majority())
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := repo.Accounts.InsertOne(sessCtx, account); err != nil {
			return nil, err
		}
		if _, err := repo.Users.InsertOne(sessCtx, profile); err != nil {
			return nil, err
		}
		if profile.IsDoctor() {
			if _, err := repo.Doctors.InsertOne(sessCtx, models.NewDoctorListing(profile)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}, txnOptions)

	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return exceptions.ErrEmailAlreadyExist(err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return exceptions.ErrStoreUnavailable(err)
	default:
		return exceptions.ErrMongoDBTransaction(err)
	}
}

func (repo *AccountMongoRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := repo.Accounts.FindOne(ctx, queries.ByEmail(email)).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &account, nil
}
