package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces secrets in log output.
const RedactedValue = "[REDACTED]"

// ledgerKeys may always be logged verbatim.
var ledgerKeys = map[string]struct{}{
	"service":      {},
	"env":          {},
	"component":    {},
	"op":           {},
	"op_id":        {},
	"caller":       {},
	"result":       {},
	"actor":        {},
	"admin":        {},
	"symbol":       {},
	"total_supply": {},
	"holders":      {},
	"digest":       {},
	"path":         {},
	"error":        {},
}

// secretKeys are masked by every handler built in this package, whatever the
// caller passed.
var secretKeys = map[string]struct{}{
	"passphrase":  {},
	"password":    {},
	"private_key": {},
	"mnemonic":    {},
	"seed":        {},
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// IsLedgerKey reports whether key is known to carry no secret material.
func IsLedgerKey(key string) bool {
	_, ok := ledgerKeys[normalizeKey(key)]
	return ok
}

// IsSecretKey reports whether values logged under key are always masked.
func IsSecretKey(key string) bool {
	_, ok := secretKeys[normalizeKey(key)]
	return ok
}

// MaskField logs value only when key is a known ledger key. Empty values pass
// through.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsLedgerKey(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}

// redactAttr is installed as part of ReplaceAttr.
func redactAttr(attr slog.Attr) slog.Attr {
	if IsSecretKey(attr.Key) && attr.Value.String() != "" {
		return slog.String(attr.Key, RedactedValue)
	}
	return attr
}
