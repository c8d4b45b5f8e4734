package workflow_test

import (
	"testing"

	"go-leaveflow/internal/workflow"

	"github.com/stretchr/testify/assert"
)

func TestInitialStage(t *testing.T) {
	tests := []struct {
		name  string
		roles workflow.RoleSet
		want  workflow.Stage
	}{
		{"school head", workflow.NewRoleSet(workflow.RoleSchoolHead), workflow.StageAwaitingDepartmentReview},
		{"department head", workflow.NewRoleSet(workflow.RoleDepartmentHead), workflow.StageAwaitingDepartmentReview},
		{"hr staff", workflow.NewRoleSet(workflow.RoleHrStaff), workflow.StageAwaitingHrHeadReview},
		{"hr head", workflow.NewRoleSet(workflow.RoleHrHead), workflow.StageAwaitingDirectorReview},
		{"educator", workflow.NewRoleSet(workflow.RoleEducator), workflow.StageAwaitingSchoolHead},
		{"no roles", workflow.NewRoleSet(), workflow.StageAwaitingSchoolHead},
		{"director falls to base case", workflow.NewRoleSet(workflow.RoleEducationDirector), workflow.StageAwaitingSchoolHead},
		{"school head wins over hr staff", workflow.NewRoleSet(workflow.RoleHrStaff, workflow.RoleSchoolHead), workflow.StageAwaitingDepartmentReview},
		{"hr staff wins over hr head", workflow.NewRoleSet(workflow.RoleHrHead, workflow.RoleHrStaff), workflow.StageAwaitingHrHeadReview},
		{"educator with hr head", workflow.NewRoleSet(workflow.RoleEducator, workflow.RoleHrHead), workflow.StageAwaitingDirectorReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workflow.InitialStage(tt.roles)

			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsPending())
		})
	}
}

func TestVisibilityScope(t *testing.T) {
	org := workflow.OrgUnit{UserID: "u-1", WorkSiteID: "site-1", DepartmentID: "dept-1"}

	tests := []struct {
		name  string
		roles workflow.RoleSet
		org   workflow.OrgUnit
		want  workflow.Scope
	}{
		{"hr head sees all", workflow.NewRoleSet(workflow.RoleHrHead), org, workflow.Scope{Kind: workflow.ScopeAll}},
		{"hr staff sees all", workflow.NewRoleSet(workflow.RoleHrStaff), org, workflow.Scope{Kind: workflow.ScopeAll}},
		{"super admin sees all", workflow.NewRoleSet(workflow.RoleSuperAdmin), org, workflow.Scope{Kind: workflow.ScopeAll}},
		{"school head by work site", workflow.NewRoleSet(workflow.RoleSchoolHead), org, workflow.Scope{Kind: workflow.ScopeWorkSite, WorkSiteID: "site-1"}},
		{"department head by department", workflow.NewRoleSet(workflow.RoleDepartmentHead), org, workflow.Scope{Kind: workflow.ScopeDepartment, DepartmentID: "dept-1"}},
		{"director sees all", workflow.NewRoleSet(workflow.RoleEducationDirector), org, workflow.Scope{Kind: workflow.ScopeAll}},
		{"educator sees own", workflow.NewRoleSet(workflow.RoleEducator), org, workflow.Scope{Kind: workflow.ScopeOwn, RequesterID: "u-1"}},
		{"school head without site fails closed", workflow.NewRoleSet(workflow.RoleSchoolHead), workflow.OrgUnit{UserID: "u-1", DepartmentID: "dept-1"}, workflow.Scope{Kind: workflow.ScopeNone}},
		{"department head without department fails closed", workflow.NewRoleSet(workflow.RoleDepartmentHead), workflow.OrgUnit{UserID: "u-1", WorkSiteID: "site-1"}, workflow.Scope{Kind: workflow.ScopeNone}},
		{"no user id", workflow.NewRoleSet(), workflow.OrgUnit{}, workflow.Scope{Kind: workflow.ScopeNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, workflow.VisibilityScope(tt.roles, tt.org))
		})
	}
}

func TestScope_Allows(t *testing.T) {
	owner := workflow.OrgUnit{UserID: "u-2", WorkSiteID: "site-1", DepartmentID: "dept-1"}

	assert.True(t, workflow.Scope{Kind: workflow.ScopeAll}.Allows(owner))
	assert.True(t, workflow.Scope{Kind: workflow.ScopeWorkSite, WorkSiteID: "site-1"}.Allows(owner))
	assert.False(t, workflow.Scope{Kind: workflow.ScopeWorkSite, WorkSiteID: "site-2"}.Allows(owner))
	assert.True(t, workflow.Scope{Kind: workflow.ScopeDepartment, DepartmentID: "dept-1"}.Allows(owner))
	assert.False(t, workflow.Scope{Kind: workflow.ScopeDepartment, DepartmentID: "dept-1"}.Allows(workflow.OrgUnit{UserID: "u-2"}))
	assert.True(t, workflow.Scope{Kind: workflow.ScopeOwn, RequesterID: "u-2"}.Allows(owner))
	assert.False(t, workflow.Scope{Kind: workflow.ScopeOwn, RequesterID: "u-1"}.Allows(owner))
	assert.False(t, workflow.Scope{Kind: workflow.ScopeNone}.Allows(owner))
}

func TestRules(t *testing.T) {
	t.Run("super admin holds every rule", func(t *testing.T) {
		assert.Len(t, workflow.Rules(workflow.NewRoleSet(workflow.RoleSuperAdmin)), len(workflow.TransitionRules()))
	})

	t.Run("educator and department head cannot review", func(t *testing.T) {
		assert.False(t, workflow.CanReview(workflow.NewRoleSet(workflow.RoleEducator)))
		assert.False(t, workflow.CanReview(workflow.NewRoleSet(workflow.RoleDepartmentHead)))
	})

	t.Run("school head approve and reject", func(t *testing.T) {
		rules := workflow.Rules(workflow.NewRoleSet(workflow.RoleSchoolHead))
		names := make([]string, 0, len(rules))
		for _, r := range rules {
			names = append(names, r.Name)
		}
		assert.ElementsMatch(t, []string{"school_head_approve", "school_head_reject"}, names)
	})
}

func TestRoleSet(t *testing.T) {
	s := workflow.ParseRoleSet([]string{"HR_Staff", " school_head ", "janitor"})

	assert.True(t, s.Has(workflow.RoleHrStaff))
	assert.True(t, s.Has(workflow.RoleSchoolHead))
	assert.False(t, s.Has(workflow.RoleHrHead))
	assert.True(t, s.HasAny(workflow.RoleHrHead, workflow.RoleSchoolHead))
	assert.Equal(t, []string{"school_head", "hr_staff"}, s.Strings())
	assert.True(t, workflow.NewRoleSet().IsEmpty())
	assert.Equal(t, workflow.NewRoleSet(), workflow.NewRoleSet(workflow.Role(0), workflow.Role(42)))
}
