package handler

import (
	"context"
	"errors"
	"metro-routing/db"
	"metro-routing/model"
	"metro-routing/utils"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// UserStore 用户存储 (数据库或内存)
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// Claims JWT 载荷
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// AuthHandler 登录/注册与 JWT 校验
type AuthHandler struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

// NewAuthHandler 创建认证接口
func NewAuthHandler(users UserStore, secret string, ttl time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, secret: []byte(secret), ttl: ttl, log: log}
}

// Login 处理用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request parameters"})
		return
	}

	// 用户不存在和密码错误返回同样的信息
	user, err := h.users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, db.ErrUserNotFound) {
			h.log.Error("查询用户失败", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up user"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := h.IssueToken(user)
	if err != nil {
		h.log.Error("生成 Token 失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Username: user.Username,
		Message:  "login successful",
	})
}

// IssueToken 为用户签发 JWT
func (h *AuthHandler) IssueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   strconv.FormatUint(uint64(user.ID), 10),
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "metro-routing",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Register 用户注册, 新用户没有任何角色
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request parameters"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	newUser := &model.User{
		Username: req.Username,
		Password: hashedPassword,
		Email:    req.Email,
	}
	if err := h.users.Create(c.Request.Context(), newUser); err != nil {
		if errors.Is(err, db.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		h.log.Error("创建用户失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "registration successful",
		"username": newUser.Username,
	})
}

// AuthMiddleware JWT 认证中间件
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return h.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 将用户信息存入上下文
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("roles", claims.Roles)
		c.Next()
	}
}

// RequireRole 必须在 AuthMiddleware 之后使用
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, _ := c.Get("roles")
		list, _ := roles.([]string)
		for _, r := range list {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// SeedAdmin 启动时确保管理员账号存在
func SeedAdmin(ctx context.Context, users UserStore, password string) error {
	_, err := users.FindByUsername(ctx, "admin")
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return users.Create(ctx, &model.User{
		Username: "admin",
		Password: hash,
		Roles:    []string{model.RoleQuery},
	})
}
