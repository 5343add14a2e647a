package rprequest

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"tdp/internal/entity/etrequest"
)

// requestRepoImpl is the gorm-backed repository.
type requestRepoImpl struct {
	db *gorm.DB
}

// NewRepository creates a repository on an existing gorm handle.
func NewRepository(db *gorm.DB) Repository {
	return &requestRepoImpl{db: db}
}

// NewDB opens the MySQL connection used by the repository.
func NewDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (r *requestRepoImpl) Create(ctx context.Context, req *etrequest.TaxRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create tax request failed: %w", err)
	}
	return nil
}

func (r *requestRepoImpl) GetByRequestID(ctx context.Context, requestID, requestType string) (*etrequest.TaxRequest, error) {
	var req etrequest.TaxRequest
	result := r.db.WithContext(ctx).
		Where("request_id = ? AND type = ?", requestID, requestType).
		First(&req)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("get tax request failed: %w", result.Error)
	}
	return &req, nil
}

func (r *requestRepoImpl) MarkScheduled(ctx context.Context, requestID string) error {
	result := r.db.WithContext(ctx).
		Model(&etrequest.TaxRequest{}).
		Where("request_id = ? AND status = ?", requestID, etrequest.StatusNew).
		Update("status", etrequest.StatusScheduled)
	if result.Error != nil {
		return fmt.Errorf("mark scheduled failed: %w", result.Error)
	}
	return nil
}

// MarkProcessing claims the record: the guarded update is the atomic
// transition that gives one worker exclusive ownership.
func (r *requestRepoImpl) MarkProcessing(ctx context.Context, requestID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&etrequest.TaxRequest{}).
		Where("request_id = ? AND status IN ?", requestID,
			[]etrequest.Status{etrequest.StatusNew, etrequest.StatusScheduled}).
		Update("status", etrequest.StatusProcessing)
	if result.Error != nil {
		return false, fmt.Errorf("mark processing failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *requestRepoImpl) MarkSuccess(ctx context.Context, requestID string, result []byte) error {
	updates := map[string]interface{}{
		"status": etrequest.StatusSuccess,
	}
	if len(result) > 0 {
		updates["result"] = result
	}
	return r.markTerminal(ctx, requestID, updates)
}

func (r *requestRepoImpl) MarkFailed(ctx context.Context, requestID, errorCode, errorMessage string, result []byte) error {
	updates := map[string]interface{}{
		"status":        etrequest.StatusFailed,
		"error_code":    errorCode,
		"error_message": errorMessage,
	}
	if len(result) > 0 {
		updates["result"] = result
	}
	return r.markTerminal(ctx, requestID, updates)
}

// markTerminal writes a terminal state exactly once: only the owning
// processing state may transition out.
func (r *requestRepoImpl) markTerminal(ctx context.Context, requestID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&etrequest.TaxRequest{}).
		Where("request_id = ? AND status = ?", requestID, etrequest.StatusProcessing).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("mark terminal failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("tax request %s not in processing state", requestID)
	}
	return nil
}
