package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/redis/go-redis/v9"

	"github.com/Zabi-Anwari/CollabCore/config"
	"github.com/Zabi-Anwari/CollabCore/hub"
)

func main() {
	cfgPath := flag.String("config", "collabcore.toml", "path to config file")
	flag.Parse()

	log.SetHandler(text.New(os.Stdout))
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.WithError(err).Fatal("connecting to Redis")
		}
		log.WithField("addr", cfg.RedisAddr).Info("Redis bridge enabled")
	}

	srv := hub.NewServer(rdb)
	log.WithField("addr", cfg.ListenAddr).Info("relay listening")
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		log.WithError(err).Fatal("relay stopped")
	}
}
