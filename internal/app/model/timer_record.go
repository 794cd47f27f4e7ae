package model

import (
	"time"
)

// TimerRecord 一个计时器键对应一行，Payload 保存快照 JSON 原文
type TimerRecord struct {
	TimerKey  string    `gorm:"primaryKey;column:timer_key;type:varchar(128)" json:"timer_key"`
	Payload   []byte    `gorm:"not null" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TimerRecord) TableName() string { return "timer_records" }
