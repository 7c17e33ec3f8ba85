// Command seed loads a catalog metadata JSON file into the key-value
// store. The file carries the same document shape the API serves from:
//
//	{"photos": [{"id": "...", "category": "...", ...}]}
//
// Counters are left untouched; re-seeding never resets click history.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	"github.com/lumapix/photogallery/internal/config"
	"github.com/lumapix/photogallery/internal/gallery"
	"github.com/lumapix/photogallery/internal/store/redisstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		file    = flag.String("file", "metadata.json", "path to the catalog metadata JSON file")
		timeout = flag.Duration("timeout", 30*time.Second, "overall timeout for the seed operation")
	)
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found.")
		}
	}

	// Seeding only touches the metadata store, so only the Redis section
	// of the configuration is required.
	var redisCfg config.RedisConfig
	if err := envconfig.Process("", &redisCfg); err != nil {
		return fmt.Errorf("failed to load Redis config: %w", err)
	}
	if err := redisCfg.Validate(); err != nil {
		return fmt.Errorf("invalid Redis config: %w", err)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read metadata file: %w", err)
	}

	var doc struct {
		Photos []gallery.Photo `json:"photos"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse metadata file: %w", err)
	}
	if len(doc.Photos) == 0 {
		return fmt.Errorf("metadata file %s contains no photos", *file)
	}
	for i, p := range doc.Photos {
		if p.ID == "" {
			return fmt.Errorf("photo at index %d has no id", i)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:         redisCfg.Addr,
		Password:     redisCfg.Password,
		DB:           redisCfg.DB,
		DialTimeout:  redisCfg.DialTimeout,
		ReadTimeout:  redisCfg.ReadTimeout,
		WriteTimeout: redisCfg.WriteTimeout,
		PoolSize:     redisCfg.PoolSize,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	store := redisstore.New(rdb)
	if err := store.PutCatalog(ctx, doc.Photos); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	log.Printf("seeded %d photos into %s", len(doc.Photos), redisCfg.Addr)
	return nil
}
