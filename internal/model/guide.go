package model

import "time"

// Guide 服务端保存的完整指南
type Guide struct {
	ID          string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	ProjectType string    `gorm:"column:project_type;size:255;index" json:"project_type"`
	URLs        string    `gorm:"column:urls;type:text" json:"urls"`
	FileNames   string    `gorm:"column:file_names;type:text" json:"file_names"`
	Title       string    `gorm:"column:title;size:500" json:"title"`
	Content     string    `gorm:"column:content;type:longtext" json:"content"`
	CreatedAt   time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (Guide) TableName() string {
	return "guides"
}

// GuideResult 生成接口的响应体，至少包含 id 与 content
type GuideResult struct {
	ID      RecordID `json:"id"`
	Content string   `json:"content"`
	Title   string   `json:"title,omitempty"`
}
