package rbac

import "go-leaveflow/internal/workflow"

const ResourceLeave = "leave"

const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionReview = "review"
	ActionReport = "report"
)

// reportRoles may export requests across their visibility scope.
var reportRoles = []workflow.Role{
	workflow.RoleHrStaff,
	workflow.RoleHrHead,
	workflow.RoleEducationDirector,
	workflow.RoleSuperAdmin,
}

// Policies returns the p rules. Read and create belong to the base educator
// role; review goes to every role that owns at least one transition rule.
func Policies() [][]string {
	base := workflow.RoleEducator.String()
	rules := [][]string{
		{base, ResourceLeave, ActionRead},
		{base, ResourceLeave, ActionCreate},
	}

	for _, r := range workflow.AllRoles() {
		if workflow.CanReview(workflow.NewRoleSet(r)) {
			rules = append(rules, []string{r.String(), ResourceLeave, ActionReview})
		}
	}
	for _, r := range reportRoles {
		rules = append(rules, []string{r.String(), ResourceLeave, ActionReport})
	}
	return rules
}

// GroupingPolicies makes every other role inherit the educator permissions.
func GroupingPolicies() [][]string {
	base := workflow.RoleEducator.String()
	out := make([][]string, 0, len(workflow.AllRoles()))
	for _, r := range workflow.AllRoles() {
		if r == workflow.RoleEducator {
			continue
		}
		out = append(out, []string{r.String(), base})
	}
	return out
}
