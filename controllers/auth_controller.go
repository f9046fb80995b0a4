package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/questhub/config"
	"github.com/cppla/questhub/middleware"
	"github.com/cppla/questhub/models"
	"github.com/cppla/questhub/store"
	"github.com/cppla/questhub/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles wallet sign-in: nonce issue, signature login, logout and profile.
type AuthController struct {
	db    *gorm.DB
	users *store.UserStore
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db, users: store.NewUserStore(db)}
}

// Nonce issues a single-use nonce and the message the wallet has to sign.
func (a *AuthController) Nonce(ctx *gin.Context) {
	address, err := utils.NormalizeAddress(ctx.Query("address"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid wallet address")
		return
	}
	cfg := config.Get()
	ttl := time.Duration(cfg.NonceTTLSeconds) * time.Second
	nonce := utils.IssueNonce(address, ttl)

	utils.Success(ctx, gin.H{
		"address":    address,
		"nonce":      nonce,
		"message":    utils.LoginMessage(cfg.LoginDomain, address, nonce),
		"expires_in": int(ttl.Seconds()),
	})
}

// Login verifies a personal_sign signature over the nonce message and issues a JWT.
// First logins may bind an inviter.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Inviter   string `json:"inviter"`
	}

	ip := ctx.ClientIP()
	if utils.LoginIsBanned(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42920, "too many failed logins, try again later")
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	address, err := utils.NormalizeAddress(req.Address)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid wallet address")
		return
	}
	inviter := ""
	if strings.TrimSpace(req.Inviter) != "" {
		if inviter, err = utils.NormalizeAddress(req.Inviter); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40004, "invalid inviter address")
			return
		}
	}

	nonce, ok := utils.ConsumeNonce(address)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "nonce missing or expired")
		return
	}
	msg := utils.LoginMessage(config.Get().LoginDomain, address, nonce)
	if !utils.VerifySignature(address, msg, req.Signature) {
		if utils.LoginFailRecord(ip) >= config.Get().LoginFailMaxPerIPPerHour {
			utils.LoginBan(ip)
			utils.Sugar.Warnw("login temporarily banned", "ip", ip)
		}
		utils.Error(ctx, http.StatusUnauthorized, 40107, "signature does not match address")
		return
	}

	user, created, err := a.users.Login(ctx.Request.Context(), address, inviter, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSelfInvite):
			utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
		case errors.Is(err, store.ErrInviterNotFound):
			utils.Error(ctx, http.StatusBadRequest, 40011, err.Error())
		default:
			utils.Sugar.Errorw("login failed", "address", address, "err", err)
			utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load account")
		}
		return
	}
	if created {
		utils.Sugar.Infow("account created", "address", address, "inviter", inviter)
	}

	token, err := utils.GenerateToken(user.Address, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":   token,
		"created": created,
		"user":    userResponse(*user),
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current account.
func (a *AuthController) Me(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	user, err := a.users.Find(ctx.Request.Context(), address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load user")
		return
	}
	utils.Success(ctx, userResponse(*user))
}

// UpdateProfile changes the display nickname.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}
	nickname := utils.SanitizePlain(req.Nickname)
	if l := len([]rune(nickname)); l > 32 {
		utils.Error(ctx, http.StatusBadRequest, 40006, "nickname must be at most 32 characters")
		return
	}

	res := a.db.WithContext(ctx.Request.Context()).Model(&models.User{}).
		Where("address = ?", address).
		Update("nickname", nickname)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to update profile")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"nickname": nickname})
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":              user.ID,
		"address":         user.Address,
		"inviter_address": user.InviterAddress,
		"nickname":        user.Nickname,
		"points":          user.Points,
		"balance":         user.Balance.StringFixed(2),
		"last_login_at":   user.LastLoginAt,
		"created_at":      user.CreatedAt,
		"is_admin":        middleware.IsAdmin(user.Address),
	}
}
