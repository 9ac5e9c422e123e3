package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs from the environment
type Config struct {
	HTTPPort     string
	APIToken     string
	BaseCurrency string
	NewsLocale   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	GeminiAPIKey     string
	GeminiModel      string
	MetalPriceAPIKey string

	// provider endpoint overrides, empty selects each client's default
	CoinGeckoURL    string
	ExchangeRateURL string
	MetalPriceURL   string
	YahooChartURL   string
	YahooSearchURL  string
	GoogleNewsURL   string
}

// Load reads the configuration from the environment, with a .env file
// as optional local override
func Load() *Config {
	_ = godotenv.Load(".env") // load .env, if exists

	return &Config{
		HTTPPort:     envOr("HTTP_PORT", "8080"),
		APIToken:     envOr("API_TOKEN", "dev-token"),
		BaseCurrency: envOr("BASE_CURRENCY", "TRY"),
		NewsLocale:   envOr("NEWS_LOCALE", "tr"),

		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: envOr("DB_PASSWORD", "postgres"),
		DBName:     envOr("DB_NAME", "finoria"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		MetalPriceAPIKey: os.Getenv("METALPRICE_API_KEY"),

		CoinGeckoURL:    os.Getenv("COINGECKO_URL"),
		ExchangeRateURL: os.Getenv("EXCHANGERATE_URL"),
		MetalPriceURL:   os.Getenv("METALPRICE_URL"),
		YahooChartURL:   os.Getenv("YAHOO_CHART_URL"),
		YahooSearchURL:  os.Getenv("YAHOO_SEARCH_URL"),
		GoogleNewsURL:   os.Getenv("GOOGLE_NEWS_URL"),
	}
}

// DBConnStr builds the lib/pq connection string, honoring DB_CONN_STR
// when set (Docker friendly)
func (c *Config) DBConnStr() string {
	if explicit := os.Getenv("DB_CONN_STR"); explicit != "" {
		return explicit
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
