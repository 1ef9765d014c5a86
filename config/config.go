package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// Config holds the application configuration
type Config struct {
	Port string // Service port

	DiscordAPIURL       string // Discord REST API base URL
	DiscordCDNURL       string // Discord CDN base URL (avatars)
	DiscordClientID     string // OAuth application client ID
	DiscordClientSecret string // OAuth application client secret
	DiscordGuildID      string // Target server whose members may mint
	OAuthRedirectURL    string // OAuth callback URL of this service

	SessionSecret string        // Secret for signing session cookies
	SessionTTL    time.Duration // Session cookie lifetime

	WalletPrivateKey string        // Server signing key (hex, no 0x prefix)
	ContractAddress  string        // NFT collection contract address
	ChainID          int64         // Chain the signatures are scoped to
	SignatureTTL     time.Duration // Validity window of issued payloads
	IssuanceWindow   time.Duration // Per-recipient duplicate-issuance window

	TokenName        string // Reward token name; {name} expands to the member's display name
	TokenDescription string // Reward token description; {name} expands likewise
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		Port:                getEnv("PORT", "8788"),
		DiscordAPIURL:       getEnv("DISCORD_API_URL", "https://discord.com/api/v10"),
		DiscordCDNURL:       getEnv("DISCORD_CDN_URL", "https://cdn.discordapp.com"),
		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordGuildID:      getEnv("DISCORD_GUILD_ID", "834227967404146718"),
		OAuthRedirectURL:    getEnv("OAUTH_REDIRECT_URL", "http://localhost:8788/api/auth/callback"),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionTTL:          24 * time.Hour,
		WalletPrivateKey:    getEnv("WALLET_PRIVATE_KEY", ""),
		ContractAddress:     getEnv("CONTRACT_ADDRESS", ""),
		ChainID:             80001, // Mumbai
		SignatureTTL:        5 * time.Minute,
		IssuanceWindow:      30 * time.Second,
		TokenName:           getEnv("TOKEN_NAME", "{name}'s thirdweb Discord Member NFT"),
		TokenDescription:    getEnv("TOKEN_DESCRIPTION", "An NFT rewarded to {name} for being a part of the thirdweb community!"),
	}

	// Parse SESSION_TTL if provided
	if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL format: %w", err)
		}
		config.SessionTTL = duration
	}

	// Parse SIGNATURE_TTL if provided
	if ttlStr := os.Getenv("SIGNATURE_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SIGNATURE_TTL format: %w", err)
		}
		config.SignatureTTL = duration
	}

	// Parse CHAIN_ID if provided
	if chainStr := os.Getenv("CHAIN_ID"); chainStr != "" {
		var chainID int64
		if _, err := fmt.Sscanf(chainStr, "%d", &chainID); err != nil || chainID <= 0 {
			return nil, fmt.Errorf("invalid CHAIN_ID format: %q", chainStr)
		}
		config.ChainID = chainID
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid. The signing key is checked
// here so a misconfigured issuer refuses to start instead of failing per
// request.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.DiscordGuildID == "" {
		return fmt.Errorf("DISCORD_GUILD_ID cannot be empty")
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET cannot be empty")
	}

	if c.WalletPrivateKey == "" {
		return fmt.Errorf("%w: set WALLET_PRIVATE_KEY", domain.ErrSigningKeyMissing)
	}

	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("CONTRACT_ADDRESS is not a valid address: %q", c.ContractAddress)
	}

	if c.SignatureTTL <= 0 {
		return fmt.Errorf("SIGNATURE_TTL must be positive")
	}

	return nil
}

// TokenMetadata returns the reward token metadata templates. The {name}
// placeholder and the image are filled in per session at issuance.
func (c *Config) TokenMetadata() domain.TokenMetadata {
	return domain.TokenMetadata{
		Name:        c.TokenName,
		Description: c.TokenDescription,
	}
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
