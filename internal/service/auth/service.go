package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/repository"
)

// 密码与资料边界
const (
	passwordMinLen    = 6
	displayNameMaxLen = 100
)

// Service 认证服务
// 会话令牌是 HS256 JWT，同时落库以支持撤销
type Service struct {
	repo     repository.AuthRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewService 创建认证服务
// 未配置密钥时生成随机密钥，重启后旧令牌全部失效
func NewService(repo repository.AuthRepository, secret string, tokenTTL time.Duration) *Service {
	if strings.TrimSpace(secret) == "" {
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			panic(fmt.Sprintf("failed to generate JWT secret: %v", err))
		}
		secret = base64.StdEncoding.EncodeToString(randomBytes)
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
	Password    string `json:"password" binding:"required,min=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User      *model.UserInfo `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Register 注册用户并直接发放会话令牌
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, errors.New("user with this email already exists")
	}

	if len(req.Password) < passwordMinLen {
		return nil, fmt.Errorf("password must be at least %d characters", passwordMinLen)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hashedPassword),
		Role:         "user",
		IsActive:     true,
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(user)
}

// Login 用户登录
// 邮箱不存在与密码错误返回同一条消息，不泄露账号是否存在
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetUserByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, errors.New("invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.New("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return s.issueToken(user)
}

// ValidateToken 验证会话令牌并返回对应用户
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid user ID in token")
	}

	record, err := s.repo.GetTokenByValue(tokenString)
	if err != nil || record == nil || record.IsRevoked {
		return nil, errors.New("token is revoked")
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, errors.New("token is expired")
	}

	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, errors.New("invalid token")
	}
	return user, nil
}

// Logout 撤销当前会话令牌
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	record, err := s.repo.GetTokenByValue(tokenString)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}
	if record == nil {
		return nil
	}
	return s.repo.RevokeToken(record.ID)
}

// UpdateProfile 更新展示名
func (s *Service) UpdateProfile(ctx context.Context, userID, displayName string) (*model.UserInfo, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > displayNameMaxLen {
		return nil, fmt.Errorf("display_name must be 1-%d characters", displayNameMaxLen)
	}

	user.DisplayName = displayName
	if err := s.repo.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user.ToUserInfo(), nil
}

// ChangePassword 修改密码
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}
	if len(newPassword) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters", passwordMinLen)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	return s.repo.UpdateUser(user)
}

// issueToken 签发会话令牌并落库
func (s *Service) issueToken(user *model.User) (*LoginResponse, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	record := &model.AuthToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.CreateToken(record); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	return &LoginResponse{
		User:      user.ToUserInfo(),
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}, nil
}
