package db

import (
	"context"
	"errors"
	"fmt"

	"docsynth/internal/model"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("记录不存在")

// CreateGuideWithHistory 在一个事务里保存指南与对应的历史记录
func CreateGuideWithHistory(ctx context.Context, guide *model.Guide, record *model.HistoryRecord) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(guide).Error; err != nil {
			return fmt.Errorf("保存指南失败: %w", err)
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("保存历史记录失败: %w", err)
		}
		return nil
	})
}

func GetGuide(ctx context.Context, id string) (*model.Guide, error) {
	var guide model.Guide
	if err := DB.WithContext(ctx).Where("id = ?", id).First(&guide).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询指南失败: %w", err)
	}
	return &guide, nil
}

// ListHistory 按创建时间正序返回历史（与客户端追加顺序一致）
func ListHistory(ctx context.Context, offset, limit int) ([]model.HistoryRecord, error) {
	records := []model.HistoryRecord{}
	query := DB.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询历史失败: %w", err)
	}
	return records, nil
}

func CountHistory(ctx context.Context) (int64, error) {
	var n int64
	if err := DB.WithContext(ctx).Model(&model.HistoryRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("统计历史失败: %w", err)
	}
	return n, nil
}

// CountHistoryByProjectType 每个项目类型的生成次数
func CountHistoryByProjectType(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		ProjectType string
		N           int
	}
	if err := DB.WithContext(ctx).
		Model(&model.HistoryRecord{}).
		Select("project_type, count(*) AS n").
		Group("project_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("统计项目类型失败: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.ProjectType] = r.N
	}
	return counts, nil
}
