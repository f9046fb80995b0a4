package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type nonceEntry struct {
	nonce     string
	expiresAt time.Time
}

var (
	nonceStore   = map[string]nonceEntry{}
	nonceStoreMu sync.Mutex
)

func nonceKey(address string) string {
	return "auth:nonce:" + strings.ToLower(address)
}

// IssueNonce creates a single-use login nonce for address, replacing any previous one.
func IssueNonce(address string, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if err := rc.Set(ctx, nonceKey(address), nonce, ttl).Err(); err == nil {
			return nonce
		}
	}
	nonceStoreMu.Lock()
	nonceStore[nonceKey(address)] = nonceEntry{nonce: nonce, expiresAt: time.Now().Add(ttl)}
	nonceStoreMu.Unlock()
	return nonce
}

// ConsumeNonce returns the pending nonce for address and deletes it.
func ConsumeNonce(address string) (string, bool) {
	key := nonceKey(address)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		// GETDEL needs Redis >= 6.2
		if v, err := rc.GetDel(ctx, key).Result(); err == nil && v != "" {
			return v, true
		}
	}
	nonceStoreMu.Lock()
	entry, ok := nonceStore[key]
	if ok {
		delete(nonceStore, key)
	}
	nonceStoreMu.Unlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.nonce, true
}

// LoginMessage is the exact text a wallet signs to log in.
func LoginMessage(domain, address, nonce string) string {
	return fmt.Sprintf("%s wants you to sign in with your wallet:\n%s\n\nNonce: %s", domain, address, nonce)
}
