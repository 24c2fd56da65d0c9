package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/futureme/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 将整份 AppState 保存在 state_slots 表的单个命名槽位中
type Store struct {
	db  *gorm.DB
	key string
}

// NewStore 构造 Store，key 为空时使用默认槽位名
func NewStore(gdb *gorm.DB, key string) *Store {
	key = strings.TrimSpace(key)
	if key == "" {
		key = db.DefaultStateSlotKey
	}
	return &Store{db: gdb, key: key}
}

// Key 返回当前使用的槽位名
func (s *Store) Key() string {
	return s.key
}

// Load 读取状态；槽位缺失、读取失败或内容损坏时回退到默认状态，不返回错误
func (s *Store) Load() AppState {
	var slot db.StateSlot
	if err := s.db.Where("key = ?", s.key).First(&slot).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[STATE] load slot %s failed, using defaults: %v", s.key, err)
		}
		return Default()
	}

	if strings.TrimSpace(slot.Value) == "" {
		return Default()
	}

	var loaded AppState
	if err := json.Unmarshal([]byte(slot.Value), &loaded); err != nil {
		log.Printf("[STATE] slot %s is corrupted, using defaults: %v", s.key, err)
		return Default()
	}

	loaded.normalize()
	return loaded
}

// Save 整体替换槽位内容
func (s *Store) Save(st AppState) error {
	st.normalize()
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	slot := db.StateSlot{Key: s.key, Value: string(payload)}
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      slot.Value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&slot).Error; err != nil {
		return fmt.Errorf("save state slot %s: %w", s.key, err)
	}
	return nil
}
