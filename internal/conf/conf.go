package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
)

// Config represents application configuration. Loaded once at startup and
// read-only thereafter.
type Config struct {
	// Discord configuration
	Discord DiscordConfig `yaml:"discord"`

	// Tracker (collection session) configuration
	Tracker TrackerConfig `yaml:"tracker"`

	// Correlation timing configuration
	Correlation CorrelationConfig `yaml:"correlation"`

	// Auction formatter configuration
	Auction AuctionConfig `yaml:"auction"`

	// Per-channel content policy
	Policies []ChannelPolicy `yaml:"policies"`

	// Thumbnail fingerprint → tier table
	Fingerprints map[string]string `yaml:"fingerprints"`

	// Bulk thread creation configuration
	Threads ThreadsConfig `yaml:"threads"`

	// Auto-archive groups
	ArchiveGroups []ArchiveGroup `yaml:"archive_groups"`

	// Debug mode
	Debug bool `yaml:"-"`
}

// DiscordConfig contains platform identity configuration.
type DiscordConfig struct {
	Token               string `yaml:"-"`
	GuildID             string `yaml:"guild_id"`
	CompanionID         string `yaml:"companion_id"`
	ModerationChannelID string `yaml:"moderation_channel_id"`
	GuideChannelID      string `yaml:"guide_channel_id"`
}

// TrackerConfig contains collection-session configuration.
type TrackerConfig struct {
	ReportEmoji string `yaml:"report_emoji"`
	TTLSeconds  int    `yaml:"ttl_seconds"`
}

// TTL returns the tracker expiry duration.
func (c TrackerConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// CorrelationConfig contains reply-wait timing configuration.
type CorrelationConfig struct {
	WaitTimeoutSeconds int `yaml:"wait_timeout_seconds"`
	PollIntervalMillis int `yaml:"poll_interval_millis"`
	PollAttempts       int `yaml:"poll_attempts"`
}

// WaitTimeout returns the bounded first-match timeout.
func (c CorrelationConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

// PollInterval returns the fixed content-polling interval.
func (c CorrelationConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// AuctionConfig contains %auc formatter configuration.
type AuctionConfig struct {
	DefaultPreference string            `yaml:"default_preference"`
	PreferenceAliases map[string]string `yaml:"preference_aliases"`
}

// ChannelPolicy is one channel's content policy entry.
type ChannelPolicy struct {
	ChannelID string `yaml:"channel_id"`
	Tier      string `yaml:"tier"`
	MinPrint  int    `yaml:"min_print"`
	MaxPrint  int    `yaml:"max_print"`
}

// ThreadsConfig contains bulk thread creation configuration.
type ThreadsConfig struct {
	Whitelist     []string `yaml:"whitelist"`
	RetryAttempts int      `yaml:"retry_attempts"`
}

// ArchiveGroup is one auto-archive channel group with its own target local
// time in a fixed UTC offset.
type ArchiveGroup struct {
	Name           string   `yaml:"name"`
	ChannelIDs     []string `yaml:"channel_ids"`
	Hour           int      `yaml:"hour"`
	Minute         int      `yaml:"minute"`
	UTCOffsetHours int      `yaml:"utc_offset_hours"`
	MinAgeHours    int      `yaml:"min_age_hours"`
}

// MinAge returns the minimum thread age before a sweep archives it.
func (g ArchiveGroup) MinAge() time.Duration {
	return time.Duration(g.MinAgeHours) * time.Hour
}

// LoadFromEnv loads configuration: the YAML file (path from CONFIG_PATH or
// the default lookup list) plus environment overrides for secrets and
// timing knobs.
func LoadFromEnv() (*Config, error) {
	cfg, err := LoadFile(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}

	cfg.Discord.Token = os.Getenv("DISCORD_TOKEN")
	cfg.Debug = os.Getenv("DEBUG") == "true"

	if val := os.Getenv("TRACKER_TTL_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Tracker.TTLSeconds = parsed
		}
	}
	if val := os.Getenv("WAIT_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Correlation.WaitTimeoutSeconds = parsed
		}
	}

	return cfg, nil
}

// LoadFile loads the YAML configuration file, trying a list of default
// paths when configPath is empty, and fills defaults for missing values.
func LoadFile(configPath string) (*Config, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/cardwarden.yaml",
			"./configs/cardwarden.yaml",
			"/etc/cardwarden/cardwarden.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "cardwarden.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	var err error

	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	cfg := &Config{}
	if data == nil {
		fmt.Println("[Config] No cardwarden.yaml found, using defaults")
	} else {
		fmt.Printf("[Config] Loading config from: %s\n", loadedPath)
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults fills in default values for empty fields.
func (c *Config) fillDefaults() {
	if c.Tracker.ReportEmoji == "" {
		c.Tracker.ReportEmoji = "📝"
	}
	if c.Tracker.TTLSeconds == 0 {
		c.Tracker.TTLSeconds = 60
	}
	if c.Correlation.WaitTimeoutSeconds == 0 {
		c.Correlation.WaitTimeoutSeconds = 10
	}
	if c.Correlation.PollIntervalMillis == 0 {
		c.Correlation.PollIntervalMillis = 500
	}
	if c.Correlation.PollAttempts == 0 {
		c.Correlation.PollAttempts = 10
	}
	if c.Threads.RetryAttempts == 0 {
		c.Threads.RetryAttempts = 5
	}
	for i := range c.ArchiveGroups {
		if c.ArchiveGroups[i].MinAgeHours == 0 {
			c.ArchiveGroups[i].MinAgeHours = 20
		}
	}
}

// PolicyRules converts the policy entries to the domain decision table,
// keyed by channel id.
func (c *Config) PolicyRules() map[string]domain.PolicyRule {
	rules := make(map[string]domain.PolicyRule, len(c.Policies))
	for _, p := range c.Policies {
		rules[p.ChannelID] = domain.PolicyRule{
			Tier:     domain.ParseTier(p.Tier),
			MinPrint: p.MinPrint,
			MaxPrint: p.MaxPrint,
		}
	}
	return rules
}

// FingerprintTiers converts the fingerprint table to domain tiers.
func (c *Config) FingerprintTiers() map[string]domain.Tier {
	table := make(map[string]domain.Tier, len(c.Fingerprints))
	for fp, tier := range c.Fingerprints {
		table[fp] = domain.ParseTier(tier)
	}
	return table
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return &ConfigError{Field: "DISCORD_TOKEN", Message: "required"}
	}
	if c.Discord.CompanionID == "" {
		return &ConfigError{Field: "companion_id", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
