package utils

import (
	"fmt"
	"sync"
	"time"

	"github.com/cppla/questhub/config"
)

type failWindow struct {
	count int
	until time.Time
}

var (
	loginFails   = map[string]*failWindow{}
	loginBans    = map[string]time.Time{}
	loginGuardMu sync.Mutex
)

func loginKey(parts ...string) string {
	out := "login"
	for _, p := range parts {
		out += ":" + p
	}
	return out
}

// LoginFailRecord counts a failed signature login for ip in the current hour and returns the count.
func LoginFailRecord(ip string) int {
	if cli := GetRedis(); cli != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		key := loginKey("failhour", ip, time.Now().Format("2006010215"))
		if n, err := cli.Incr(ctx, key).Result(); err == nil {
			_ = cli.Expire(ctx, key, time.Hour).Err()
			return int(n)
		}
	}

	loginGuardMu.Lock()
	defer loginGuardMu.Unlock()
	now := time.Now()
	w, ok := loginFails[ip]
	if !ok || now.After(w.until) {
		w = &failWindow{until: now.Add(time.Hour)}
		loginFails[ip] = w
	}
	w.count++
	return w.count
}

// LoginIsBanned reports whether ip is temporarily blocked from logging in.
func LoginIsBanned(ip string) bool {
	if cli := GetRedis(); cli != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if n, err := cli.Exists(ctx, loginKey("ban", ip)).Result(); err == nil {
			return n > 0
		}
	}

	loginGuardMu.Lock()
	defer loginGuardMu.Unlock()
	until, ok := loginBans[ip]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(loginBans, ip)
		return false
	}
	return true
}

// LoginBan blocks ip for LoginTempBanMinutes.
func LoginBan(ip string) {
	minutes := config.Get().LoginTempBanMinutes
	if minutes <= 0 {
		minutes = 30
	}
	ttl := time.Duration(minutes) * time.Minute
	if cli := GetRedis(); cli != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if err := cli.Set(ctx, loginKey("ban", ip), fmt.Sprintf("ban-%s", ip), ttl).Err(); err == nil {
			return
		}
	}

	loginGuardMu.Lock()
	loginBans[ip] = time.Now().Add(ttl)
	delete(loginFails, ip)
	loginGuardMu.Unlock()
}
