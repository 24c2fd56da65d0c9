package db

import "gorm.io/gorm"

// StateSlot 以命名槽位保存整份应用状态的 JSON 文本。
type StateSlot struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (StateSlot) TableName() string {
	return "state_slots"
}

// DefaultStateSlotKey 与前端 localStorage 使用的键保持一致，便于迁移旧数据。
const DefaultStateSlotKey = "future_me_coach_data"
