package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddr      string          `toml:"listenAddr"`
	DBPath          string          `toml:"dbPath"`
	DefaultLanguage string          `toml:"defaultLanguage"`
	LogConfig       LogConfig       `toml:"logConfig"`
	Provider        ProviderConfig  `toml:"provider"`
	Credits         CreditsConfig   `toml:"credits"`
	Packages        []PackageConfig `toml:"packages"`
	Storage         StorageConfig   `toml:"storage"`
	Admins          AdminConfig     `toml:"admins"`
	Session         SessionConfig   `toml:"session"`
	Telegram        TelegramConfig  `toml:"telegram"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type ProviderConfig struct {
	APIKey         string `toml:"apiKey"`
	BaseURL        string `toml:"baseURL"`
	AvatarModel    string `toml:"avatarModel"`
	SpeechModel    string `toml:"speechModel"`
	StoryModel     string `toml:"storyModel"`
	VideoModel     string `toml:"videoModel"`
	PollIntervalMS int    `toml:"pollIntervalMS"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

type CreditsConfig struct {
	InitialGrant    int64 `toml:"initialGrant"`
	AvatarCost      int64 `toml:"avatarCost"`
	StoryCost       int64 `toml:"storyCost"`
	VideoCost       int64 `toml:"videoCost"`
	SpeechBaseCost  int64 `toml:"speechBaseCost"`
	SpeechBlockSize int   `toml:"speechBlockSize"`
}

type PackageConfig struct {
	Title      string `toml:"title"`
	Credits    int64  `toml:"credits"`
	PriceCents int64  `toml:"priceCents"`
}

type StorageConfig struct {
	Driver string      `toml:"driver"` // "s3" or "local"
	S3     S3Config    `toml:"s3"`
	Local  LocalConfig `toml:"local"`
}

type S3Config struct {
	Endpoint      string `toml:"endpoint"`
	Region        string `toml:"region"`
	AccessKey     string `toml:"accessKey"`
	SecretKey     string `toml:"secretKey"`
	Bucket        string `toml:"bucket"`
	PublicBaseURL string `toml:"publicBaseURL"`
	UsePathStyle  bool   `toml:"usePathStyle"`
	Prefix        string `toml:"prefix"`
}

type LocalConfig struct {
	Dir     string `toml:"dir"`
	BaseURL string `toml:"baseURL"`
}

type AdminConfig struct {
	// Accounts registered with one of these emails receive the admin role.
	Emails []string `toml:"emails"`
}

type SessionConfig struct {
	TTLHours int `toml:"ttlHours"`
}

type TelegramConfig struct {
	// Optional side channel mirroring admin notifications to Telegram.
	BotToken     string  `toml:"botToken"`
	AdminChatIDs []int64 `toml:"adminChatIDs"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.Provider.PollIntervalMS <= 0 {
		cfg.Provider.PollIntervalMS = 5000
	}
	if cfg.Provider.TimeoutSeconds <= 0 {
		cfg.Provider.TimeoutSeconds = 300
	}
	if cfg.Session.TTLHours <= 0 {
		cfg.Session.TTLHours = 24 * 7
	}
	if cfg.Credits.SpeechBlockSize <= 0 {
		cfg.Credits.SpeechBlockSize = 200
	}
}

func ValidateURL(urlString string) bool {
	if urlString == "" {
		return false
	}
	// check if the url is valid
	if _, err := url.Parse(urlString); err != nil {
		return false
	}
	return true
}

func MaskedPrint(str string) string {
	if len(str) <= 4 {
		return strings.Repeat("*", len(str))
	}
	// only show the last 4 characters
	return strings.Repeat("*", len(str)-4) + str[len(str)-4:]
}

func PrintConfig(cfg *Config) {
	fmt.Println()
	fmt.Println("--------------------------------")
	fmt.Println("Config:")
	fmt.Printf("\tListenAddr: %s\n", cfg.ListenAddr)
	fmt.Printf("\tDBPath: %s\n", cfg.DBPath)
	fmt.Printf("\tDefaultLanguage: %s\n", cfg.DefaultLanguage)
	fmt.Printf("\tLogConfig: %v\n", cfg.LogConfig)
	fmt.Printf("\tProvider.APIKey: %s\n", MaskedPrint(cfg.Provider.APIKey))
	fmt.Printf("\tProvider.BaseURL: %s\n", cfg.Provider.BaseURL)
	fmt.Printf("\tCredits: %v\n", cfg.Credits)
	fmt.Printf("\tPackages: %v\n", cfg.Packages)
	fmt.Printf("\tStorage.Driver: %s\n", cfg.Storage.Driver)
	fmt.Printf("\tAdmins: %v\n", cfg.Admins)
	fmt.Printf("\tSession: %v\n", cfg.Session)
	fmt.Println("--------------------------------")
	fmt.Println()
}

func ValidateConfig(cfg *Config) error {
	PrintConfig(cfg)
	if cfg.DBPath == "" {
		return fmt.Errorf("dbPath is required")
	}
	if cfg.Provider.APIKey == "" {
		return fmt.Errorf("provider.apiKey is required")
	}
	if cfg.Provider.BaseURL == "" || !ValidateURL(cfg.Provider.BaseURL) {
		return fmt.Errorf("provider.baseURL is required and must be a valid URL")
	}
	if len(cfg.Admins.Emails) == 0 {
		return fmt.Errorf("admins.emails is required")
	}
	if cfg.Credits.InitialGrant < 0 {
		return fmt.Errorf("credits.initialGrant must not be negative")
	}
	if cfg.Credits.AvatarCost <= 0 {
		return fmt.Errorf("credits.avatarCost must be greater than 0")
	}
	if cfg.Credits.StoryCost <= 0 {
		return fmt.Errorf("credits.storyCost must be greater than 0")
	}
	if cfg.Credits.VideoCost <= 0 {
		return fmt.Errorf("credits.videoCost must be greater than 0")
	}
	if cfg.Credits.SpeechBaseCost <= 0 {
		return fmt.Errorf("credits.speechBaseCost must be greater than 0")
	}
	if len(cfg.Packages) == 0 {
		return fmt.Errorf("at least one credit package is required")
	}
	for i, pkg := range cfg.Packages {
		if pkg.Credits <= 0 || pkg.PriceCents <= 0 {
			return fmt.Errorf("packages[%d]: credits and priceCents must be greater than 0", i)
		}
	}
	switch cfg.Storage.Driver {
	case "s3":
		if cfg.Storage.S3.Bucket == "" || cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3: bucket and region are required")
		}
		if cfg.Storage.S3.AccessKey == "" || cfg.Storage.S3.SecretKey == "" {
			return fmt.Errorf("storage.s3: credentials are required")
		}
		if cfg.Storage.S3.PublicBaseURL == "" || !ValidateURL(cfg.Storage.S3.PublicBaseURL) {
			return fmt.Errorf("storage.s3.publicBaseURL is required and must be a valid URL")
		}
	case "local":
		if cfg.Storage.Local.Dir == "" {
			return fmt.Errorf("storage.local.dir is required")
		}
	default:
		return fmt.Errorf("storage.driver must be \"s3\" or \"local\"")
	}
	if cfg.LogConfig.Level == "" {
		return fmt.Errorf("logLevel is required")
	}
	if cfg.LogConfig.Format == "" {
		return fmt.Errorf("logFormat is required")
	}
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.AdminChatIDs) == 0 {
		return fmt.Errorf("telegram.adminChatIDs is required when telegram.botToken is set")
	}
	return nil
}
