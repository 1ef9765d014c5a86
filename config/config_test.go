package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/stretchr/testify/assert"
)

const testKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

func setRequiredEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("WALLET_PRIVATE_KEY", testKey)
	t.Setenv("CONTRACT_ADDRESS", "0xb1F25E125Bb0fA25E4a1d7c1Bf8BE3BbD4b9a7f3")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "8788", cfg.Port)
	assert.Equal(t, "https://discord.com/api/v10", cfg.DiscordAPIURL)
	assert.Equal(t, "834227967404146718", cfg.DiscordGuildID)
	assert.Equal(t, int64(80001), cfg.ChainID)
	assert.Equal(t, 5*time.Minute, cfg.SignatureTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "{name}'s thirdweb Discord Member NFT", cfg.TokenName)
}

func TestLoad_CustomEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("DISCORD_API_URL", "http://localhost:4010")
	t.Setenv("DISCORD_GUILD_ID", "999888777")
	t.Setenv("SIGNATURE_TTL", "10m")
	t.Setenv("CHAIN_ID", "137")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "http://localhost:4010", cfg.DiscordAPIURL)
	assert.Equal(t, "999888777", cfg.DiscordGuildID)
	assert.Equal(t, 10*time.Minute, cfg.SignatureTTL)
	assert.Equal(t, int64(137), cfg.ChainID)
}

func TestLoad_InvalidSignatureTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SIGNATURE_TTL", "invalid")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "invalid SIGNATURE_TTL")
}

func TestLoad_InvalidChainID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHAIN_ID", "-5")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "invalid CHAIN_ID")
}

func TestLoad_MissingSigningKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WALLET_PRIVATE_KEY", "")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, domain.ErrSigningKeyMissing))
}

func TestLoad_InvalidContractAddress(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONTRACT_ADDRESS", "not-an-address")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "CONTRACT_ADDRESS")
}

func TestGetEnv_FileIndirection(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "secret")
	assert.NoError(t, err)
	_, err = f.WriteString("from-file\n")
	assert.NoError(t, err)
	f.Close()

	t.Setenv("SESSION_SECRET_FILE", f.Name())

	assert.Equal(t, "from-file", getEnv("SESSION_SECRET", "fallback"))
}
