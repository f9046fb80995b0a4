package utils

import (
	"time"
)

// StartExpirySweeper periodically drops expired entries from the in-memory fallbacks
// used when Redis is unavailable. It returns a stop function.
func StartExpirySweeper(interval time.Duration) func() {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				if n := sweepExpired(now); n > 0 {
					Sugar.Debugf("expiry sweeper removed %d entries", n)
				}
			}
		}
	}()
	return func() { close(done) }
}

func sweepExpired(now time.Time) int {
	removed := 0

	nonceStoreMu.Lock()
	for k, e := range nonceStore {
		if now.After(e.expiresAt) {
			delete(nonceStore, k)
			removed++
		}
	}
	nonceStoreMu.Unlock()

	blacklistMu.Lock()
	for k, exp := range blacklist {
		if now.After(exp) {
			delete(blacklist, k)
			removed++
		}
	}
	blacklistMu.Unlock()

	loginGuardMu.Lock()
	for k, w := range loginFails {
		if now.After(w.until) {
			delete(loginFails, k)
			removed++
		}
	}
	for k, until := range loginBans {
		if now.After(until) {
			delete(loginBans, k)
			removed++
		}
	}
	loginGuardMu.Unlock()

	return removed
}
