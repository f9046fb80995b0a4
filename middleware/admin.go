package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/questhub/config"
	"github.com/cppla/questhub/utils"
)

// AdminRequired allows only configured admin wallets. It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		addr, ok := AddressFrom(ctx)
		if !ok || !IsAdmin(addr) {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin only")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// IsAdmin reports whether address is listed in AdminAddresses.
func IsAdmin(address string) bool {
	for _, a := range config.Get().AdminAddresses {
		if strings.EqualFold(strings.TrimSpace(a), address) {
			return true
		}
	}
	return false
}
