package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Browser  BrowserConfig
	Renderer RendererConfig
	Shipping ShippingConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type BrowserConfig struct {
	Headless       bool
	ExecutablePath string
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	Locale         string
	TimezoneID     string
}

type RendererConfig struct {
	NavigationTimeout time.Duration
	BaseReadyTimeout  time.Duration
	DeferredTimeout   time.Duration
	SettleDelay       time.Duration
}

type ShippingConfig struct {
	SearchURL      string
	TariffURL      string
	OriginCode     string
	RequestTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			ExecutablePath: getEnvOrDefault("BROWSER_EXECUTABLE_PATH", ""),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", defaultUserAgent),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1366),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 768),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "id-ID"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Asia/Jakarta"),
		},
		Renderer: RendererConfig{
			NavigationTimeout: getDurationOrDefault("RENDER_NAVIGATION_TIMEOUT", 60*time.Second),
			BaseReadyTimeout:  getDurationOrDefault("RENDER_BASE_READY_TIMEOUT", 10*time.Second),
			DeferredTimeout:   getDurationOrDefault("RENDER_DEFERRED_TIMEOUT", 8*time.Second),
			SettleDelay:       getDurationOrDefault("RENDER_SETTLE_DELAY", 1500*time.Millisecond),
		},
		Shipping: ShippingConfig{
			SearchURL:      getEnvOrDefault("SHIPPING_SEARCH_URL", "https://www.jne.co.id/api/destinations/search"),
			TariffURL:      getEnvOrDefault("SHIPPING_TARIFF_URL", "https://www.jne.co.id/id/tarif-pengiriman"),
			OriginCode:     getEnvOrDefault("SHIPPING_ORIGIN_CODE", "CGK10000"),
			RequestTimeout: getDurationOrDefault("SHIPPING_REQUEST_TIMEOUT", 20*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Renderer.NavigationTimeout <= 0 {
		return fmt.Errorf("RENDER_NAVIGATION_TIMEOUT must be positive")
	}

	if c.Renderer.DeferredTimeout <= 0 {
		return fmt.Errorf("RENDER_DEFERRED_TIMEOUT must be positive")
	}

	if c.Browser.ViewportWidth < 1 || c.Browser.ViewportHeight < 1 {
		return fmt.Errorf("browser viewport dimensions must be positive")
	}

	if c.Shipping.OriginCode == "" {
		return fmt.Errorf("SHIPPING_ORIGIN_CODE must not be empty")
	}

	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
