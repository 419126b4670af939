package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/skilllink/internal/backend"
	"github.com/dmitrijs2005/skilllink/internal/backend/blob"
	"github.com/dmitrijs2005/skilllink/internal/backend/identity"
	"github.com/dmitrijs2005/skilllink/internal/backend/migrations"
	"github.com/dmitrijs2005/skilllink/internal/backend/rows"
	"github.com/dmitrijs2005/skilllink/internal/cli"
	"github.com/dmitrijs2005/skilllink/internal/config"
	"github.com/dmitrijs2005/skilllink/internal/logging"
	"github.com/dmitrijs2005/skilllink/internal/notify"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewDefault(os.Stderr)
	notifier := notify.NewTerminal(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db connection error: %v", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	blobs, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		log.Fatalf("object storage error: %v", err)
	}

	client := &backend.Client{
		Auth:  identity.NewProvider(identity.NewPostgresRepository(db), []byte(cfg.TokenSecret), cfg.TokenTTL, logger),
		Blobs: blobs,
		Rows:  rows.NewPostgresStore(db),
	}

	logger.Info(ctx, "starting skilllink")

	app := cli.NewApp(ctx, client, notifier, logger)
	app.Run(ctx)
}
