package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	DBDSN         string
	MediaDir      string
	LogFile       string
	CartKey       string
	CartMaxBytes  int
	PageSize      int
	AdminPageSize int
	SecureCookies bool
	Dev           bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "lootmarket.db"
	} // sqlite file in project root
	media := os.Getenv("MEDIA_DIR")
	if media == "" {
		media = "./web/media"
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./lootmarket.log"
	}
	cartKey := os.Getenv("CART_KEY")
	if cartKey == "" {
		cartKey = "cart"
	}

	cfg := Config{
		Port:          port,
		DBDSN:         dsn,
		MediaDir:      media,
		LogFile:       logFile,
		CartKey:       cartKey,
		CartMaxBytes:  envInt("CART_MAX_BYTES", 64<<10),
		PageSize:      envInt("PAGE_SIZE", 12),
		AdminPageSize: envInt("ADMIN_PAGE_SIZE", 20),
		SecureCookies: envBool("SECURE_COOKIES"),
		Dev:           envBool("DEV"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s CART_KEY=%s CART_MAX_BYTES=%d DEV=%t",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.CartKey, cfg.CartMaxBytes, cfg.Dev)
	return cfg
}

// Defaults returns the configuration used when no environment is set. Tests start from it.
func Defaults() Config {
	return Config{
		Port:          "8081",
		DBDSN:         ":memory:",
		MediaDir:      "./web/media",
		CartKey:       "cart",
		CartMaxBytes:  64 << 10,
		PageSize:      12,
		AdminPageSize: 20,
	}
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] ignoring %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return b
}
