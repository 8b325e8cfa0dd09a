package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL    string
	TrackerURL string
	OutputDir  string
	DBPath     string
	UserAgent  string

	ProbeTimeout    time.Duration
	DownloadTimeout time.Duration
	PageDelay       time.Duration
	MaxPages        int
	MinAssetRecords int
	Headless        bool
	LogLevel        string

	Sources Sources
}

// Sources holds the candidate lists the strategies walk through. The
// built-in lists can be replaced wholesale by a YAML manifest.
type Sources struct {
	EndpointPaths  []string `yaml:"endpoint_paths"`
	AssetURLs      []string `yaml:"asset_urls"`
	InlinePatterns []string `yaml:"inline_patterns"`
}

func defaultSources() Sources {
	return Sources{
		EndpointPaths: []string{
			"/api/coal-plants",
			"/api/tracker/coal-plants",
			"/projects/global-coal-plant-tracker/api/data",
			"/wp-json/gem/v1/coal-plants",
			"/data/coal-plants.json",
			"/tracker-data/coal-plants",
		},
		AssetURLs: []string{
			"https://raw.githubusercontent.com/GlobalEnergyMonitor/global-coal-plant-tracker/main/data/coal_plants.csv",
			"https://raw.githubusercontent.com/GlobalEnergyMonitor/GCPT/main/Global%20Coal%20Plant%20Tracker.xlsx",
			"https://globalenergymonitor.org/wp-content/uploads/2024/07/Global-Coal-Plant-Tracker-July-2024.xlsx",
			"https://globalenergymonitor.org/wp-content/uploads/2024/04/Global-Coal-Plant-Tracker-April-2024.xlsx",
			"https://globalenergymonitor.org/wp-content/uploads/2024/01/Global-Coal-Plant-Tracker-January-2024.xlsx",
			"https://globalenergymonitor.org/wp-content/uploads/2023/07/Global-Coal-Plant-Tracker-July-2023.xlsx",
			"https://globalenergymonitor.org/wp-content/uploads/2024/coal-plant-tracker.csv",
			"https://docs.google.com/spreadsheets/d/1W-gobEQugqTR_PP0iczJCrdaR5fWYjIl/export?format=xlsx",
			"https://docs.google.com/spreadsheets/d/1W-gobEQugqTR_PP0iczJCrdaR5fWYjIl/export?format=csv",
		},
		InlinePatterns: []string{
			`var\s+\w+\s*=\s*(\[.*?\]|\{.*?\});`,
		},
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:    getEnv("GCPT_BASE_URL", "https://globalenergymonitor.org"),
		TrackerURL: getEnv("GCPT_TRACKER_URL", "https://globalenergymonitor.org/projects/global-coal-plant-tracker/tracker/"),
		OutputDir:  getEnv("GCPT_OUTPUT_DIR", filepath.Join(cwd, "out")),
		DBPath:     getEnv("GCPT_DB_PATH", filepath.Join(cwd, "data", "tracker.db")),
		UserAgent:  getEnv("GCPT_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),

		ProbeTimeout:    time.Duration(getEnvInt("GCPT_PROBE_TIMEOUT_MS", 10000)) * time.Millisecond,
		DownloadTimeout: time.Duration(getEnvInt("GCPT_DOWNLOAD_TIMEOUT_MS", 30000)) * time.Millisecond,
		PageDelay:       time.Duration(getEnvInt("GCPT_PAGE_DELAY_MS", 1000)) * time.Millisecond,
		MaxPages:        getEnvInt("GCPT_MAX_PAGES", 100),
		MinAssetRecords: getEnvInt("GCPT_MIN_ASSET_RECORDS", 10),
		Headless:        getEnvBool("GCPT_HEADLESS", true),
		LogLevel:        getEnv("GCPT_LOG_LEVEL", "info"),

		Sources: defaultSources(),
	}

	if manifest := getEnv("GCPT_SOURCES_FILE", ""); manifest != "" {
		if err := cfg.loadSources(manifest); err != nil {
			return Config{}, fmt.Errorf("load sources manifest: %w", err)
		}
	}

	return cfg, nil
}

// loadSources replaces any candidate list the manifest declares;
// lists it omits keep the built-in defaults.
func (c *Config) loadSources(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var manifest Sources
	if err := yaml.Unmarshal(blob, &manifest); err != nil {
		return err
	}
	if len(manifest.EndpointPaths) > 0 {
		c.Sources.EndpointPaths = manifest.EndpointPaths
	}
	if len(manifest.AssetURLs) > 0 {
		c.Sources.AssetURLs = manifest.AssetURLs
	}
	if len(manifest.InlinePatterns) > 0 {
		c.Sources.InlinePatterns = manifest.InlinePatterns
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
