package config

import (
	"testing"
	"time"
)

// Redis is optional at runtime: with no client connected every helper must
// behave as a cache miss, never as an error.
func TestRedisHelpersWithoutClient(t *testing.T) {
	if rdb != nil {
		t.Skip("redis client configured")
	}

	if err := SetRedisValue("k", "v", time.Minute); err != nil {
		t.Errorf("SetRedisValue: %v", err)
	}
	val, found, err := GetRedisValue("k")
	if err != nil || found || val != "" {
		t.Errorf("GetRedisValue = (%q, %v, %v), want miss", val, found, err)
	}

	if err := SetRedisObject("k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Errorf("SetRedisObject: %v", err)
	}
	var dest map[string]int
	found, err = GetRedisObject("k", &dest)
	if err != nil || found {
		t.Errorf("GetRedisObject = (%v, %v), want miss", found, err)
	}

	if err := DeleteRedisKey("k"); err != nil {
		t.Errorf("DeleteRedisKey: %v", err)
	}
}
