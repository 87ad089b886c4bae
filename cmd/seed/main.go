// Seed registers a user and uploads resume source documents, so a fresh
// deployment can run the resume and search pipelines right away.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"telegram-job-scout/internal/config"
	pg "telegram-job-scout/internal/infra/db/postgres"
	"telegram-job-scout/internal/infra/logging"
	"telegram-job-scout/internal/infra/storage"
	"telegram-job-scout/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	userID := flag.String("user", "", "user id to create (required)")
	name := flag.String("name", "", "display name (defaults to the user id)")
	flag.Parse()

	if *userID == "" {
		log.Fatal("usage: seed -user <id> [-name <name>] [source files...]")
	}
	if *name == "" {
		*name = *userID
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	files, err := storage.NewDirStore(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	logger := logging.New(cfg.Log, true)
	userRepo := pg.NewPostgresUserRepo(pool)
	sourceRepo := pg.NewPostgresResumeSourceRepo(pool)
	userUC := usecase.NewUserUseCase(userRepo, pg.NewTxManager(pool), logger)
	resumeUC := usecase.NewResumeUseCase(userRepo, sourceRepo, nil, files, cfg.AI.DefaultModel, logger)

	u, err := userUC.RegisterOrFetch(ctx, *userID, *name)
	if err != nil {
		log.Fatalf("register user: %v", err)
	}
	fmt.Printf("user %s (%s)\n", u.Name, u.ID)

	for _, path := range flag.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		src, err := resumeUC.UploadSource(ctx, u.ID, filepath.Base(path), content)
		if err != nil {
			log.Fatalf("upload %s: %v", path, err)
		}
		fmt.Printf("source %s -> %s\n", path, src.SourceFile)
	}
}
