package config

import (
	"os"
	"strings"
)

// PLAutoGenerate enables the in-process monthly schedule that regenerates
// the previous month's PL records on the 1st.
//
// Set via env:
// - PL_AUTO_GENERATE=true
func PLAutoGenerate() bool {
	return boolFromEnv("PL_AUTO_GENERATE")
}

// AllocationLockAfterClose rejects work allocation edits for months that
// already have generated PL records. Defaults to on; escape hatch for
// operators fixing historical data.
//
// Set via env:
// - ALLOCATION_LOCK_DISABLED=true
func AllocationLockAfterClose() bool {
	return !boolFromEnv("ALLOCATION_LOCK_DISABLED")
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
