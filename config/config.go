package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Ledger  LedgerConfig
	Persist PersistConfig
}

type LedgerConfig struct {
	// AllowNegativeStock controls whether a mutation whose stock replay
	// drives an item's running total below zero is accepted or rejected.
	AllowNegativeStock bool
}

type PersistConfig struct {
	DataFile    string
	BackupDir   string
	SaveTimeout time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	saveTimeout, _ := strconv.Atoi(getEnv("LEDGER_SAVE_TIMEOUT_SECONDS", "5"))

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		Ledger: LedgerConfig{
			AllowNegativeStock: getBool("LEDGER_ALLOW_NEGATIVE_STOCK", false),
		},
		Persist: PersistConfig{
			DataFile:    getEnv("LEDGER_DATA_FILE", "sales_inventory_tool.json"),
			BackupDir:   getEnv("LEDGER_BACKUP_DIR", ""),
			SaveTimeout: time.Duration(saveTimeout) * time.Second,
		},
	}

	log.Printf("Config loaded: env=%s, data_file=%s", cfg.Env, cfg.Persist.DataFile)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}
