package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/harilal/tradetoggle/internal/domain"
)

const (
	configName     = "config"
	configType     = "toml"
	walletsPathKey = "wallets.path"
	configDir      = ".tradetoggle"
	walletsFile    = "wallets.toml"

	defaultBaseURL = "https://tradetron.tech"
)

// Wallet is one account configuration: where the strategy lives and
// which environment variable carries its session cookies. Independent
// wallets run as independent process invocations.
type Wallet struct {
	Name       string
	StrategyID domain.StrategyID
	CookieEnv  string
}

type Config struct {
	BaseURL        string
	Wallets        []Wallet
	TelegramToken  string
	TelegramChatID int64
	Cycles         int
	Delay          time.Duration
	Retries        int
	Backoff        time.Duration
}

// Load reads the wallets file and the environment. A local .env is
// loaded first when present; CI runs carry real environment variables.
func Load(cfg *viper.Viper) (Config, error) {
	_ = godotenv.Load()

	if cfg == nil {
		cfg = viper.New()
	}

	wallets, err := loadWallets(cfg)
	if err != nil {
		return Config{}, err
	}

	out := Config{
		BaseURL: envOrDefault("TT_BASE_URL", defaultBaseURL),
		Wallets: wallets,
		Cycles:  envInt("NUM_TOGGLES", 50),
		Delay:   time.Duration(envInt("DELAY_SECONDS", 1)) * time.Second,
		Retries: envInt("TOGGLE_RETRIES", 3),
		Backoff: time.Duration(envInt("TOGGLE_BACKOFF_SECONDS", 3)) * time.Second,
	}

	out.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if chat := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); chat != "" {
		chatID, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		out.TelegramChatID = chatID
	}

	if out.Cycles < 0 {
		return Config{}, errors.New("NUM_TOGGLES must not be negative")
	}
	if out.Delay < 0 {
		return Config{}, errors.New("DELAY_SECONDS must not be negative")
	}

	return out, nil
}

func loadWallets(cfg *viper.Viper) ([]Wallet, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, configDir, walletsFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetDefault(walletsPathKey, defaultPath)
	_ = cfg.BindEnv(walletsPathKey, "TT_WALLETS_FILE")

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	path := cfg.GetString(walletsPathKey)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Wallets may be configured purely through STRATEGY_ID_*
			// environment variables.
			return nil, nil
		}
		return nil, fmt.Errorf("read wallets file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode wallets file: %w", err)
	}
	file.applyDefaults()
	if err := file.validateVersion(); err != nil {
		return nil, err
	}

	wallets := make([]Wallet, 0, len(file.Wallets))
	for _, w := range file.Wallets {
		if w.Name == "" {
			return nil, errors.New("wallet entry missing name")
		}
		wallets = append(wallets, Wallet{
			Name:       w.Name,
			StrategyID: domain.StrategyID(w.StrategyID),
			CookieEnv:  w.CookieEnv,
		})
	}

	return wallets, nil
}

// WalletByName resolves a wallet from the file, falling back to a
// purely environment-defined wallet when the file has no entry.
// Environment overrides win over file values either way.
func (c Config) WalletByName(name string) (Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Wallet{}, errors.New("wallet name is required")
	}

	wallet := Wallet{Name: name}
	found := false
	for _, w := range c.Wallets {
		if strings.EqualFold(w.Name, name) {
			wallet = w
			found = true
			break
		}
	}

	if raw := os.Getenv(walletEnv("STRATEGY_ID", wallet.Name)); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Wallet{}, fmt.Errorf("parse %s: %w", walletEnv("STRATEGY_ID", wallet.Name), err)
		}
		wallet.StrategyID = domain.StrategyID(id)
		found = true
	}

	if !found {
		return Wallet{}, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, name)
	}
	if wallet.StrategyID <= 0 {
		return Wallet{}, fmt.Errorf("wallet %s has no strategy id", wallet.Name)
	}

	return wallet, nil
}

// CookieBlob returns the wallet's encoded session cookies. The blob is
// required before any network activity starts.
func (c Config) CookieBlob(w Wallet) (string, error) {
	envName := w.CookieEnv
	if envName == "" {
		envName = walletEnv("TT_COOKIES_B64", w.Name)
	}

	blob := strings.TrimSpace(os.Getenv(envName))
	if blob == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrCookieBlobMissing, envName)
	}
	return blob, nil
}

// CyclesFor returns the toggle count for a wallet: the wallet-specific
// NUM_TOGGLES_<NAME> wins over the shared NUM_TOGGLES.
func (c Config) CyclesFor(w Wallet) int {
	if raw := os.Getenv(walletEnv("NUM_TOGGLES", w.Name)); raw != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 0 {
			return n
		}
	}
	return c.Cycles
}

func walletEnv(prefix, name string) string {
	return prefix + "_" + strings.ToUpper(name)
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
