package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/futureme/internal/config"
	"github.com/futureme/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	var dbPath, email, password string
	var reset bool
	flag.StringVar(&dbPath, "db", cfg.DatabasePath, "sqlite db path")
	flag.StringVar(&email, "email", "", "login email")
	flag.StringVar(&password, "password", "", "login password")
	flag.BoolVar(&reset, "reset", false, "overwrite the password of an existing account")
	flag.Parse()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Fatal("email 和 password 不能为空")
	}

	// 初始化数据库
	if err := db.Init(dbPath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("密码加密失败:", err)
	}

	var user db.User
	err = db.DB.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = db.User{Email: email, Password: string(hashedPassword)}
		if err := db.DB.Create(&user).Error; err != nil {
			log.Fatal("创建用户失败:", err)
		}
		fmt.Println("用户创建成功:", email)
	case err != nil:
		log.Fatal("查询用户失败:", err)
	case !reset:
		fmt.Println("用户已存在，无需初始化（使用 -reset 重置密码）")
	default:
		if err := db.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
			log.Fatal("重置密码失败:", err)
		}
		fmt.Println("密码已重置:", email)
	}
}
