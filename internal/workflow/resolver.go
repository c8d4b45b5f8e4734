package workflow

type initialStageRule struct {
	roles []Role
	stage Stage
}

// A requester never reviews their own request at their own level, so each
// reviewing role starts one level above itself. Evaluated top to bottom.
var initialStageRules = []initialStageRule{
	{roles: []Role{RoleSchoolHead, RoleDepartmentHead}, stage: StageAwaitingDepartmentReview},
	{roles: []Role{RoleHrStaff}, stage: StageAwaitingHrHeadReview},
	{roles: []Role{RoleHrHead}, stage: StageAwaitingDirectorReview},
}

const defaultInitialStage = StageAwaitingSchoolHead

// InitialStage picks the review stage a new request from roles starts in.
func InitialStage(roles RoleSet) Stage {
	for _, rule := range initialStageRules {
		if roles.HasAny(rule.roles...) {
			return rule.stage
		}
	}
	return defaultInitialStage
}

type ScopeKind int

const (
	// ScopeNone matches nothing.
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeWorkSite
	ScopeDepartment
	ScopeOwn
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeAll:
		return "all"
	case ScopeWorkSite:
		return "work_site"
	case ScopeDepartment:
		return "department"
	case ScopeOwn:
		return "own"
	default:
		return "none"
	}
}

// OrgUnit carries the organizational attributes of a user as supplied by the
// identity provider. Empty strings mean "not assigned".
type OrgUnit struct {
	UserID       string
	WorkSiteID   string
	DepartmentID string
}

// Scope describes which requests an actor may list.
type Scope struct {
	Kind         ScopeKind
	WorkSiteID   string
	DepartmentID string
	RequesterID  string
}

func (s Scope) IsEmpty() bool {
	return s.Kind == ScopeNone
}

// Allows reports whether a request owned by owner falls inside the scope.
func (s Scope) Allows(owner OrgUnit) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeWorkSite:
		return owner.WorkSiteID != "" && owner.WorkSiteID == s.WorkSiteID
	case ScopeDepartment:
		return owner.DepartmentID != "" && owner.DepartmentID == s.DepartmentID
	case ScopeOwn:
		return owner.UserID != "" && owner.UserID == s.RequesterID
	default:
		return false
	}
}

// VisibilityScope classifies read access for the listing layer. Scoped roles
// without the matching org attribute get ScopeNone rather than falling through
// to a wider scope.
func VisibilityScope(roles RoleSet, org OrgUnit) Scope {
	switch {
	case roles.HasAny(RoleHrHead, RoleHrStaff, RoleSuperAdmin):
		return Scope{Kind: ScopeAll}
	case roles.Has(RoleSchoolHead):
		if org.WorkSiteID == "" {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeWorkSite, WorkSiteID: org.WorkSiteID}
	case roles.Has(RoleDepartmentHead):
		if org.DepartmentID == "" {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeDepartment, DepartmentID: org.DepartmentID}
	case roles.Has(RoleEducationDirector):
		// reporting view; review rights still come from the transition table
		return Scope{Kind: ScopeAll}
	default:
		if org.UserID == "" {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeOwn, RequesterID: org.UserID}
	}
}

// Rules returns the transition rules roles may invoke. SuperAdmin gets all of them.
func Rules(roles RoleSet) []Rule {
	out := make([]Rule, 0, len(transitionRules))
	for _, rule := range transitionRules {
		if rule.permits(roles) {
			out = append(out, rule)
		}
	}
	return out
}

// CanReview reports whether roles may invoke at least one transition rule.
func CanReview(roles RoleSet) bool {
	return len(Rules(roles)) > 0
}
