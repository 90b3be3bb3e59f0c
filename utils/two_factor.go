package utils

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	// ErrNoSecret means a code was generated or verified before any secret
	// exists. Kept distinct from a wrong code so the UI can send the user
	// back to setup instead of asking for another attempt.
	ErrNoSecret = errors.New("no two-factor secret configured")
	// ErrMalformedCode rejects input before it reaches validation.
	ErrMalformedCode = errors.New("two-factor code must be exactly 6 digits")
	// ErrRandomSource is fatal: setup aborts rather than falling back to a
	// weaker entropy source.
	ErrRandomSource = errors.New("secure random source unavailable")
)

const (
	twoFactorDigits = 6
	twoFactorPeriod = 30
	// Codes from the previous and next 30s step are accepted to tolerate
	// clock skew between the server and the authenticator device.
	twoFactorSkew = 1
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

type TwoFactorConfig struct {
	Issuer string
	Digits int
	Period int
}

func DefaultTwoFactorConfig(issuer string) TwoFactorConfig {
	return TwoFactorConfig{
		Issuer: issuer,
		Digits: twoFactorDigits,
		Period: twoFactorPeriod,
	}
}

// EncodeSecret renders raw key material the way authenticator apps expect it:
// RFC 4648 base32, upper case, no padding.
func EncodeSecret(raw []byte) string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
}

// DecodeSecret is the inverse of EncodeSecret.
func DecodeSecret(secret string) ([]byte, error) {
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
}

// GenerateTwoFactorSecret draws a fresh 160-bit secret from the system CSPRNG.
func GenerateTwoFactorSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return EncodeSecret(raw), nil
}

// ProvisioningURI builds the otpauth:// URI consumed by authenticator apps
// via QR code or manual entry.
func ProvisioningURI(secret, accountEmail string, cfg TwoFactorConfig) string {
	label := fmt.Sprintf("%s:%s", url.PathEscape(cfg.Issuer), url.PathEscape(accountEmail))

	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", cfg.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", cfg.Digits))
	query.Set("period", fmt.Sprintf("%d", cfg.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode())
}

// GenerateCodeAt computes the 6-digit code for the 30-second step containing
// t. The result is always exactly 6 ASCII digits, leading zeros included.
func GenerateCodeAt(secret string, t time.Time) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	code, err := totp.GenerateCodeCustom(secret, t, totp.ValidateOpts{
		Period:    twoFactorPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate two-factor code: %w", err)
	}
	return code, nil
}

// VerifyCodeAt checks a submitted code against the step containing t and its
// two neighbours. A missing secret or a malformed code is reported as an
// error, never as a plain "wrong code" result.
func VerifyCodeAt(secret, code string, t time.Time) (bool, error) {
	if secret == "" {
		return false, ErrNoSecret
	}
	if !codePattern.MatchString(code) {
		return false, ErrMalformedCode
	}
	valid, err := totp.ValidateCustom(code, secret, t, totp.ValidateOpts{
		Period:    twoFactorPeriod,
		Skew:      twoFactorSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to validate two-factor code: %w", err)
	}
	return valid, nil
}

// VerifyTwoFactorCode verifies a code against the current wall clock.
func VerifyTwoFactorCode(secret, code string) (bool, error) {
	return VerifyCodeAt(secret, code, time.Now())
}
