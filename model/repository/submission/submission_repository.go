package submission

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dappstore.GO/model/entity"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// AutoMigrate creates the ledger table if missing.
func (r *SubmissionRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&entity.Submission{})
}

// Record appends a submission. summary is stored as JSON and may be nil.
func (r *SubmissionRepository) Record(ctx context.Context, s *entity.Submission, summary any) error {
	if summary != nil {
		b, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		s.Summary = datatypes.JSON(b)
	}
	return r.db.WithContext(ctx).Create(s).Error
}

// FindBySubmitter lists the most recent submissions of a GitHub user.
func (r *SubmissionRepository) FindBySubmitter(ctx context.Context, submitter string, limit int) ([]entity.Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []entity.Submission
	err := r.db.WithContext(ctx).
		Where("submitter = ?", submitter).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FindByResource lists submissions touching a dApp id or store key.
func (r *SubmissionRepository) FindByResource(ctx context.Context, resource string) ([]entity.Submission, error) {
	var out []entity.Submission
	err := r.db.WithContext(ctx).
		Where("resource = ?", resource).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
