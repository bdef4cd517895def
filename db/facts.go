package db

import (
	"context"
	"fmt"
	"metro-routing/model"

	"gorm.io/gorm"
)

// batchSize 批量插入的大小
const batchSize = 100

// FactStore station_facts 表中的事实快照
// 三元组存储不可用时可以作为事实来源
type FactStore struct {
	db *gorm.DB
}

// NewFactStore 创建事实快照存储
func NewFactStore(db *gorm.DB) *FactStore {
	return &FactStore{db: db}
}

// FetchNetworkFacts 读取整个快照, 站序缺失的行跳过
func (s *FactStore) FetchNetworkFacts(ctx context.Context) ([]model.StationFact, error) {
	var records []model.FactRecord
	if err := s.db.WithContext(ctx).Order("line_code, stop_order, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("读取事实快照失败: %w", err)
	}

	facts := make([]model.StationFact, 0, len(records))
	for _, r := range records {
		if f, ok := r.ToFact(); ok {
			facts = append(facts, f)
		}
	}
	return facts, nil
}

// ImportFacts 用新的事实整体替换快照 (单个事务)
func (s *FactStore) ImportFacts(ctx context.Context, facts []model.StationFact) (int, error) {
	records := make([]model.FactRecord, 0, len(facts))
	for _, f := range facts {
		if !f.Valid() {
			continue
		}
		records = append(records, model.NewFactRecord(f))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.FactRecord{}).Error; err != nil {
			return fmt.Errorf("清空快照失败: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, batchSize).Error; err != nil {
			return fmt.Errorf("插入事实失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Count 快照中的事实数量
func (s *FactStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.FactRecord{}).Count(&n).Error
	return n, err
}
