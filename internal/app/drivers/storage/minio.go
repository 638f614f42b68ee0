package storage

import (
	"context"
	"docbook-service/internal/app/config"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewMinio(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig) *minio.Client {
	endPoint := fmt.Sprintf("%s:%s", driverConfig.Minio.Host, driverConfig.Minio.Port)
	minioClient, err := minio.New(endPoint, &minio.Options{
		Creds:  credentials.NewStaticV4(driverConfig.Minio.Username, driverConfig.Minio.Password, ""),
		Secure: driverConfig.Minio.UseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Minio Client: %s", err.Error())
	}

	exists, err := minioClient.BucketExists(context.Background(), internalConfig.Minio.BucketName)
	if err != nil {
		log.Fatalf("Failed to check minio bucket %s: %s", internalConfig.Minio.BucketName, err.Error())
	}
	if !exists {
		err = minioClient.MakeBucket(context.Background(), internalConfig.Minio.BucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatalf("Failed to create minio bucket %s: %s", internalConfig.Minio.BucketName, err.Error())
		}
	}

	log.Println("Successfully connected to minio")
	return minioClient
}
