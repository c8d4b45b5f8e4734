package leave

import (
	"time"

	"go-leaveflow/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Leave struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_requester_dates"`
	// Org attributes of the requester at submission time, used for scoped listing.
	RequesterWorkSiteID   string `gorm:"type:varchar(64);index:idx_leaves_work_site"`
	RequesterDepartmentID string `gorm:"type:varchar(64);index:idx_leaves_department"`

	LeaveType  string    `gorm:"type:varchar(50);not null"`
	StartDate  time.Time `gorm:"type:date;not null;index:idx_leaves_requester_dates"`
	EndDate    time.Time `gorm:"type:date;not null;index:idx_leaves_requester_dates"`
	TotalDays  int       `gorm:"type:int;not null;default:1"`
	Reason     string    `gorm:"type:text;not null"`
	Attachment *string   `gorm:"type:varchar(500)"`

	Stage   string  `gorm:"type:varchar(64);not null;index:idx_leaves_stage"`
	Comment *string `gorm:"type:text"`

	LastReviewedBy *uuid.UUID `gorm:"type:uuid"`
	LastReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

func (l Leave) toRequest() workflow.Request {
	return workflow.Request{
		RequesterID: l.RequesterID.String(),
		StartDate:   l.StartDate,
		EndDate:     l.EndDate,
		LeaveType:   l.LeaveType,
		Reason:      l.Reason,
		Attachment:  l.Attachment,
		Stage:       workflow.Stage(l.Stage),
		Comment:     l.Comment,
	}
}

func (l Leave) owner() workflow.OrgUnit {
	return workflow.OrgUnit{
		UserID:       l.RequesterID.String(),
		WorkSiteID:   l.RequesterWorkSiteID,
		DepartmentID: l.RequesterDepartmentID,
	}
}

func totalDays(start, end time.Time) int {
	return int(workflow.CalendarDay(end).Sub(workflow.CalendarDay(start)).Hours()/24) + 1
}
