package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Status 生成记录状态
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// RecordID 生成服务下发的不透明标识。
// JSON 中既可能是字符串也可能是数字（42 与 "42" 等价），统一按字符串保存。
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id 既不是字符串也不是数字: %s", string(b))
	}
	*id = RecordID(n.String())
	return nil
}

func (id RecordID) String() string {
	return string(id)
}

// HistoryRecord 一次指南生成的摘要记录（前端 dashboard 直接消费该结构）
type HistoryRecord struct {
	ID          RecordID  `gorm:"column:id;primaryKey;size:64" json:"id"`
	ProjectType string    `gorm:"column:project_type;size:255;index" json:"projectType"`
	Status      Status    `gorm:"column:status;size:20;index" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (HistoryRecord) TableName() string {
	return "history_records"
}
