package repository

import (
	"context"

	"github.com/examly/backend/internal/model"
	"gorm.io/gorm"
)

type WeightsRepository interface {
	// TypeWeights loads the per-type default weight table.
	TypeWeights(ctx context.Context) (map[model.QuestionType]int, error)
}

type weightsRepository struct {
	db *gorm.DB
}

func NewWeightsRepository(db *gorm.DB) WeightsRepository {
	return &weightsRepository{db: db}
}

func (r *weightsRepository) TypeWeights(ctx context.Context) (map[model.QuestionType]int, error) {
	var rows []model.QuestionTypeWeight
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	weights := make(map[model.QuestionType]int, len(rows))
	for _, row := range rows {
		weights[row.QuestionType] = row.Weight
	}
	return weights, nil
}
