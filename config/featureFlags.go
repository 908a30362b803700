package config

import (
	"os"
	"strings"
)

// SaleLockEnabled gates the coarse per-register redis lock taken around a
// sale. Row locks inside the sale transaction stay on either way.
//
// Set via env:
// - SALE_LOCK_DISABLED=true
func SaleLockEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SALE_LOCK_DISABLED")))
	return !(v == "1" || v == "true" || v == "yes" || v == "y")
}

// LowStockNotificationsEnabled gates writing low-stock events to the
// notification outbox. Stock decrements are unaffected.
//
// Set via env:
// - LOW_STOCK_NOTIFICATIONS_DISABLED=true
func LowStockNotificationsEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("LOW_STOCK_NOTIFICATIONS_DISABLED")))
	return !(v == "1" || v == "true" || v == "yes" || v == "y")
}
