package leave

import "go-leaveflow/internal/workflow"

// Principal is the authenticated caller as seen by the leave service.
type Principal struct {
	UserID       string
	Roles        workflow.RoleSet
	WorkSiteID   string
	DepartmentID string
}

func (p Principal) Actor() workflow.Actor {
	return workflow.Actor{ID: p.UserID, Roles: p.Roles}
}

func (p Principal) OrgUnit() workflow.OrgUnit {
	return workflow.OrgUnit{UserID: p.UserID, WorkSiteID: p.WorkSiteID, DepartmentID: p.DepartmentID}
}

func (p Principal) Scope() workflow.Scope {
	return workflow.VisibilityScope(p.Roles, p.OrgUnit())
}
