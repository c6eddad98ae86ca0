package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Submission records one change proposed through the commit workflow.
type Submission struct {
	ID            uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Submitter     string         `gorm:"column:submitter;type:varchar(64);not null;index" json:"submitter"`
	Document      string         `gorm:"column:document;type:varchar(32);not null" json:"document"`
	Operation     string         `gorm:"column:operation;type:varchar(64);not null" json:"operation"`
	Resource      string         `gorm:"column:resource;type:varchar(255);not null;index" json:"resource"`
	CommitMessage string         `gorm:"column:commit_message;type:varchar(512);not null" json:"commitMessage"`
	CompareURL    string         `gorm:"column:compare_url;type:varchar(512);not null" json:"url"`
	Summary       datatypes.JSON `gorm:"column:summary" json:"summary,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Submission) TableName() string {
	return "registry_submission"
}
