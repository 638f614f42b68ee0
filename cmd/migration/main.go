package main

import (
	"context"
	"docbook-service/internal/app/config"
	"docbook-service/internal/app/drivers/database"
	"docbook-service/internal/app/drivers/logger"
	"docbook-service/internal/pkg/queries"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// main creates the collections' indexes. Running it twice is harmless, an
// existing index with the same definition is left alone.
func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()
	log := logger.NewLogrusLogger(driverConfig, internalConfig)

	client := database.NewMongoDB(driverConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to disconnect from mongo database")
		}
	}()

	db := client.Database(driverConfig.MongoDB.DbName)
	indexes := queries.CollectionIndexes()

	collections := make([]string, 0, len(indexes))
	for name := range indexes {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	created := 0
	for _, name := range collections {
		names, err := db.Collection(name).Indexes().CreateMany(ctx, indexes[name])
		if err != nil {
			log.WithFields(logrus.Fields{
				"collection": name,
			}).WithError(err).Fatal("Error creating indexes")
		}
		created += len(names)
		log.WithFields(logrus.Fields{
			"collection": name,
			"indexes":    names,
		}).Info("Indexes ensured")
	}

	log.Infof("Applied %d indexes on %s", created, driverConfig.MongoDB.DbName)
}
