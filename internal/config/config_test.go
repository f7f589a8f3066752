package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harilal/tradetoggle/internal/domain"
)

func writeWalletsFixture(t *testing.T) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "wallets.toml")
	contents := `version = 1

[[wallets]]
name = "gopi"
strategy_id = 18713274

[[wallets]]
name = "ramki"
strategy_id = 19202011
cookie_env = "TT_COOKIES_RAMKI_CUSTOM"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("TT_WALLETS_FILE", path)
}

func TestLoadReadsWalletsFile(t *testing.T) {
	writeWalletsFixture(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	require.Len(t, cfg.Wallets, 2)
	assert.Equal(t, "gopi", cfg.Wallets[0].Name)
	assert.Equal(t, domain.StrategyID(18713274), cfg.Wallets[0].StrategyID)
	assert.Equal(t, "TT_COOKIES_RAMKI_CUSTOM", cfg.Wallets[1].CookieEnv)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "https://tradetron.tech", cfg.BaseURL)
	assert.Equal(t, 50, cfg.Cycles)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, 3*time.Second, cfg.Backoff)
	assert.Empty(t, cfg.Wallets)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TT_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("NUM_TOGGLES", "5")
	t.Setenv("DELAY_SECONDS", "2")
	t.Setenv("TOGGLE_RETRIES", "4")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.BaseURL)
	assert.Equal(t, 5, cfg.Cycles)
	assert.Equal(t, 2*time.Second, cfg.Delay)
	assert.Equal(t, 4, cfg.Retries)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
}

func TestLoadRejectsNegativeToggles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NUM_TOGGLES", "-1")

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NUM_TOGGLES")
}

func TestWalletByNameFromFile(t *testing.T) {
	writeWalletsFixture(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	wallet, err := cfg.WalletByName("GOPI")
	require.NoError(t, err)
	assert.Equal(t, "gopi", wallet.Name)
	assert.Equal(t, domain.StrategyID(18713274), wallet.StrategyID)
}

func TestWalletByNameEnvOnly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STRATEGY_ID_SOLO", "777")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	wallet, err := cfg.WalletByName("solo")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyID(777), wallet.StrategyID)
}

func TestWalletByNameEnvOverridesFile(t *testing.T) {
	writeWalletsFixture(t)
	t.Setenv("STRATEGY_ID_GOPI", "555")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	wallet, err := cfg.WalletByName("gopi")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyID(555), wallet.StrategyID)
}

func TestWalletByNameUnknown(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	_, err = cfg.WalletByName("ghost")
	require.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestCookieBlobNamesMissingVariable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Config{}
	_, err := cfg.CookieBlob(Wallet{Name: "gopi"})
	require.ErrorIs(t, err, domain.ErrCookieBlobMissing)
	assert.Contains(t, err.Error(), "TT_COOKIES_B64_GOPI")
}

func TestCookieBlobCustomEnvName(t *testing.T) {
	t.Setenv("TT_COOKIES_RAMKI_CUSTOM", "blob-value")

	cfg := Config{}
	blob, err := cfg.CookieBlob(Wallet{Name: "ramki", CookieEnv: "TT_COOKIES_RAMKI_CUSTOM"})
	require.NoError(t, err)
	assert.Equal(t, "blob-value", blob)
}

func TestCyclesForWalletSpecificOverride(t *testing.T) {
	t.Setenv("NUM_TOGGLES_GOPI", "7")

	cfg := Config{Cycles: 50}
	assert.Equal(t, 7, cfg.CyclesFor(Wallet{Name: "gopi"}))
	assert.Equal(t, 50, cfg.CyclesFor(Wallet{Name: "ramki"}))
}
