package main

import (
	"log"

	"gorm.io/gorm"

	"github.com/jaditi930/Sketchify/internal/cache"
	"github.com/jaditi930/Sketchify/internal/config"
	"github.com/jaditi930/Sketchify/internal/database"
	"github.com/jaditi930/Sketchify/internal/server"
	"github.com/jaditi930/Sketchify/internal/store"
)

func main() {
	cfg := config.Load()

	var db *gorm.DB
	if cfg.Storage.Driver != "memory" {
		var err error
		db, err = database.Connect()
		if err != nil {
			log.Fatalf("❌ Database connection failed: %v", err)
		}
		defer database.Close(db)
		log.Printf("✅ Database connected successfully")
	} else {
		log.Println("ℹ️ Using in-memory store (no persistence)")
	}

	st, err := store.New(cfg.Storage.Driver, db)
	if err != nil {
		log.Fatalf("❌ Store initialization failed: %v", err)
	}

	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("⚠️ Redis connection failed: %v (chat history cache disabled)", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	srv := server.New(cfg, db, st, redisClient)
	srv.SetupMiddleware()
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
