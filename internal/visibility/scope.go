package visibility

import (
	"go-leaveflow/internal/workflow"

	"gorm.io/gorm"
)

// Column names on the leaves table holding the requester snapshot taken at submission.
const (
	RequesterColumn  = "requester_id"
	WorkSiteColumn   = "requester_work_site_id"
	DepartmentColumn = "requester_department_id"
)

// Scope narrows a leaves query to what s allows. ScopeNone matches nothing.
func Scope(s workflow.Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch s.Kind {
		case workflow.ScopeAll:
			return db
		case workflow.ScopeWorkSite:
			return db.Where(WorkSiteColumn+" = ?", s.WorkSiteID)
		case workflow.ScopeDepartment:
			return db.Where(DepartmentColumn+" = ?", s.DepartmentID)
		case workflow.ScopeOwn:
			return db.Where(RequesterColumn+" = ?", s.RequesterID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// CacheKey identifies s for per-scope caches.
func CacheKey(s workflow.Scope) string {
	switch s.Kind {
	case workflow.ScopeAll:
		return "all"
	case workflow.ScopeWorkSite:
		return "work_site:" + s.WorkSiteID
	case workflow.ScopeDepartment:
		return "department:" + s.DepartmentID
	case workflow.ScopeOwn:
		return "own:" + s.RequesterID
	default:
		return "none"
	}
}
