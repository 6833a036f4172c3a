package main

import (
	"github.com/sproutapp/forum/auth"
	"github.com/sproutapp/forum/config"
	"github.com/sproutapp/forum/ingest"
	"github.com/sproutapp/forum/models"
	"github.com/sproutapp/forum/routes"
	"github.com/sproutapp/forum/service"
	"github.com/sproutapp/forum/storage"
	"github.com/sproutapp/forum/store"
	"github.com/sproutapp/forum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Thread{}, &models.Reply{}, &models.Like{})

	// Object storage when configured, local disk otherwise
	var blobs storage.BlobStore
	if cfg.StorageEndpoint != "" {
		s3, err := storage.NewS3Store(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageRegion,
			cfg.StoragePublicURL,
			cfg.StorageUseSSL,
		)
		if err != nil {
			utils.Sugar.Fatalf("object storage init failed: %v", err)
		}
		blobs = s3
	} else {
		blobs = &storage.LocalStore{BaseDir: cfg.UploadDir, BaseURL: cfg.UploadBaseURL}
	}

	gate := auth.NewJWTGate(cfg.JWTSecret)
	ingestor := ingest.New(blobs, int64(cfg.MaxAttachmentTotalMB)<<20)
	svc := service.NewEngagement(
		store.NewThreadStore(db),
		store.NewReplyStore(db),
		store.NewLikeStore(db),
		ingestor,
	)

	r := routes.SetupRouter(svc, gate)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
