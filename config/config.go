package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

const (
	// EnforcementRequired blocks every authenticated route except two-factor
	// setup until the admin enrolls.
	EnforcementRequired = "required"
	// EnforcementOptional only gates admins who already enrolled.
	EnforcementOptional = "optional"
)

type Config struct {
	Port string

	JWTSecret string

	// TOTPIssuer is the display name authenticator apps show next to the
	// account.
	TOTPIssuer string
	// SecretEncryptionKey seals stored TOTP secrets (AES-256-GCM).
	SecretEncryptionKey []byte
	// MFAEnforcement is "required" or "optional".
	MFAEnforcement string

	StorageType string
	AssetBucket string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// LoadConfig reads configuration from the environment. Database settings are
// read directly by repositories.InitDB.
func LoadConfig() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	key, err := hex.DecodeString(os.Getenv("SECRET_ENCRYPTION_KEY"))
	if err != nil {
		return nil, fmt.Errorf("SECRET_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("SECRET_ENCRYPTION_KEY must decode to 32 bytes")
	}

	enforcement := getEnv("MFA_ENFORCEMENT", EnforcementRequired)
	if enforcement != EnforcementRequired && enforcement != EnforcementOptional {
		return nil, fmt.Errorf("invalid MFA_ENFORCEMENT value: %q", enforcement)
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           jwtSecret,
		TOTPIssuer:          getEnv("TOTP_ISSUER", "Story Pixie Admin"),
		SecretEncryptionKey: key,
		MFAEnforcement:      enforcement,
		StorageType:         getEnv("STORAGE_TYPE", "local"),
		AssetBucket:         os.Getenv("ASSET_BUCKET"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   os.Getenv("GOOGLE_REDIRECT_URL"),
	}, nil
}

// getEnv retrieves an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
