package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futureme/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Authenticator 是登录能力的边界，只返回是否通过
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (bool, error)
}

// LocalAuthenticator 使用 users 表与 bcrypt 校验密码。
// 邮箱首次登录时自动注册，之后必须使用相同密码。
type LocalAuthenticator struct {
	db *gorm.DB
}

// NewLocalAuthenticator 构造 LocalAuthenticator
func NewLocalAuthenticator(gdb *gorm.DB) *LocalAuthenticator {
	return &LocalAuthenticator{db: gdb}
}

// Authenticate 实现 Authenticator
func (a *LocalAuthenticator) Authenticate(ctx context.Context, email, password string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	var user db.User
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("find user: %w", err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		if err := a.db.WithContext(ctx).Create(&db.User{Email: email, Password: string(hashed)}).Error; err != nil {
			return false, fmt.Errorf("create user: %w", err)
		}
		return true, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

// NormalizeEmail 去除空白并转为小写，用户表与会话使用同一形式
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
