package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config contains runtime configuration required by the service.
type Config struct {
	Port    string
	DBURL   string            // optional; enables the sync audit log
	APIKeys map[string]string // apiKey -> source name

	HubSpot HubSpotConfig
	Domain  DomainConfig
	Log     LogConfig

	LeadDiscriminatorField string
	MappingsFile           string
}

// HubSpotConfig holds destination API settings.
type HubSpotConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// DomainConfig controls website-to-domain normalization.
type DomainConfig struct {
	CompoundSuffixes []string
	PublicSuffix     bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads configuration from environment variables, a .env file in the
// working directory and an optional config.yaml, in that order of priority.
// API_KEYS format: "source1:key1,source2:key2"
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	token := strings.TrimSpace(v.GetString("hubspot.token"))
	if token == "" {
		return Config{}, errors.New("HUBSPOT_TOKEN required")
	}

	apiKeys, err := parseAPIKeys(v.GetString("api_keys"))
	if err != nil {
		return Config{}, err
	}
	// Local dev fallback so the service runs out-of-the-box.
	if len(apiKeys) == 0 {
		apiKeys["dev-trigger-key"] = "salesforce-dev"
	}

	timeout := v.GetDuration("hubspot.timeout")
	if timeout <= 0 {
		return Config{}, errors.New("HUBSPOT_TIMEOUT must be a positive duration")
	}

	return Config{
		Port:    strings.TrimSpace(v.GetString("port")),
		DBURL:   strings.TrimSpace(v.GetString("db_url")),
		APIKeys: apiKeys,
		HubSpot: HubSpotConfig{
			Token:   token,
			BaseURL: strings.TrimSpace(v.GetString("hubspot.base_url")),
			Timeout: timeout,
		},
		Domain: DomainConfig{
			CompoundSuffixes: splitList(v.GetStringSlice("domain.compound_suffixes")),
			PublicSuffix:     v.GetBool("domain.public_suffix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		LeadDiscriminatorField: strings.TrimSpace(v.GetString("lead.discriminator_field")),
		MappingsFile:           strings.TrimSpace(v.GetString("mappings_file")),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot.timeout", "10s")
	v.SetDefault("domain.compound_suffixes", []string{"co.uk"})
	v.SetDefault("domain.public_suffix", false)
	v.SetDefault("lead.discriminator_field", "contact_or_account")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

func parseAPIKeys(raw string) (map[string]string, error) {
	apiKeys := map[string]string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`API_KEYS must be "source:key,source:key"`)
		}
		source := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if source == "" || key == "" {
			return nil, errors.New(`API_KEYS must be "source:key,source:key"`)
		}
		apiKeys[key] = source
	}
	return apiKeys, nil
}

// splitList accepts both YAML lists and comma-separated environment values.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
