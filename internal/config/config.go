// Package config loads the service configuration.
//
// Values are resolved in three layers: built-in defaults, an optional TOML
// file named by BUDGET_CONFIG_FILE, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const EnvConfigFile = "BUDGET_CONFIG_FILE"

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	DynamoDB DynamoDBConfig `toml:"dynamodb"`
	Payments PaymentsConfig `toml:"payments"`
	Catalog  CatalogConfig  `toml:"catalog"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type LogConfig struct {
	Level string `toml:"level"`
	Env   string `toml:"env"`
}

// DynamoDBConfig holds the connection settings and the table names.
//
// AccessKeyID and SecretAccessKey default to "local" so DynamoDB Local
// works without credentials.
type DynamoDBConfig struct {
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	BudgetsTable    string `toml:"budgets_table"`
	ProductsTable   string `toml:"products_table"`
	ServicesTable   string `toml:"services_table"`
	TaxesTable      string `toml:"taxes_table"`
	CurrenciesTable string `toml:"currencies_table"`
	PaymentsTable   string `toml:"payments_table"`
}

type PaymentsConfig struct {
	AccessToken string `toml:"access_token"`
	Mock        bool   `toml:"mock"`
}

// CatalogConfig points at an optional TOML catalog. When File is set it
// replaces the DynamoDB catalog tables.
type CatalogConfig struct {
	File string `toml:"file"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Env: "production"},
		DynamoDB: DynamoDBConfig{
			Region:          "us-east-1",
			AccessKeyID:     "local",
			SecretAccessKey: "local",
			BudgetsTable:    "budgets",
			ProductsTable:   "products",
			ServicesTable:   "services",
			TaxesTable:      "taxes",
			CurrenciesTable: "currencies",
			PaymentsTable:   "billing_payments",
		},
	}
}

// Load resolves the configuration from defaults, the optional TOML file
// and the environment.
func Load() (Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(EnvConfigFile)); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes path over cfg. Keys missing from the file keep their
// current value.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config: unknown keys in %s: %v", path, undecoded)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Server.Port = port
	}

	cfg.Log.Level = getenvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Env = getenvDefault("APP_ENV", cfg.Log.Env)

	db := &cfg.DynamoDB
	db.Region = getenvDefault("AWS_REGION", db.Region)
	db.Endpoint = getenvDefault("DYNAMODB_ENDPOINT", db.Endpoint)
	db.AccessKeyID = getenvDefault("AWS_ACCESS_KEY_ID", db.AccessKeyID)
	db.SecretAccessKey = getenvDefault("AWS_SECRET_ACCESS_KEY", db.SecretAccessKey)
	db.BudgetsTable = getenvDefault("BUDGETS_TABLE", db.BudgetsTable)
	db.ProductsTable = getenvDefault("PRODUCTS_TABLE", db.ProductsTable)
	db.ServicesTable = getenvDefault("SERVICES_TABLE", db.ServicesTable)
	db.TaxesTable = getenvDefault("TAXES_TABLE", db.TaxesTable)
	db.CurrenciesTable = getenvDefault("CURRENCIES_TABLE", db.CurrenciesTable)
	db.PaymentsTable = getenvDefault("PAYMENTS_TABLE", db.PaymentsTable)

	cfg.Payments.AccessToken = getenvDefault("MERCADOPAGO_ACCESS_TOKEN", cfg.Payments.AccessToken)
	cfg.Catalog.File = getenvDefault("CATALOG_FILE", cfg.Catalog.File)
	if v, ok := os.LookupEnv("PAYMENT_GATEWAY_MOCK"); ok {
		cfg.Payments.Mock = parseFlag(v)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Server.Port) }
