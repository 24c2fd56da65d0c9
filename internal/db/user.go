package db

import "gorm.io/gorm"

// User 保存本地登录凭据，Email 唯一，Password 为 bcrypt 哈希
type User struct {
	gorm.Model
	Email    string `gorm:"size:255;uniqueIndex;not null"`
	Password string `gorm:"not null"`
}
