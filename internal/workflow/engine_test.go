package workflow_test

import (
	"errors"
	"testing"
	"time"

	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/workflow"
	workflowerrors "go-leaveflow/internal/workflow/errors"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestEngine() workflow.Engine {
	return workflow.Engine{Now: func() time.Time { return fixedNow }}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roles(rs ...workflow.Role) workflow.RoleSet {
	return workflow.NewRoleSet(rs...)
}

func TestEngine_Transition_Approve(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		roles     workflow.RoleSet
		from      workflow.Stage
		leaveType string
		want      workflow.Stage
	}{
		{"hr staff", roles(workflow.RoleHrStaff), workflow.StageAwaitingDepartmentReview, "sick leave", workflow.StageApprovedByHrAwaitingDirector},
		{"hr head", roles(workflow.RoleHrHead), workflow.StageAwaitingHrHeadReview, "sick leave", workflow.StageApprovedByHrHeadAwaitingDirector},
		{"school head non annual", roles(workflow.RoleSchoolHead), workflow.StageAwaitingSchoolHead, "sick leave", workflow.StageApprovedBySchoolHead},
		{"school head annual", roles(workflow.RoleSchoolHead), workflow.StageAwaitingSchoolHead, "annual leave", workflow.StageApprovedBySchoolHeadAwaitingDirector},
		{"school head annual mixed case", roles(workflow.RoleSchoolHead), workflow.StageAwaitingSchoolHead, " Annual Leave ", workflow.StageApprovedBySchoolHeadAwaitingDirector},
		{"director after hr", roles(workflow.RoleEducationDirector), workflow.StageApprovedByHrAwaitingDirector, "", workflow.StageApprovedByDirector},
		{"director after hr head", roles(workflow.RoleEducationDirector), workflow.StageApprovedByHrHeadAwaitingDirector, "", workflow.StageApprovedByDirector},
		{"director after school head", roles(workflow.RoleEducationDirector), workflow.StageApprovedBySchoolHeadAwaitingDirector, "annual leave", workflow.StageApprovedByDirector},
		{"director own review stage", roles(workflow.RoleEducationDirector), workflow.StageAwaitingDirectorReview, "", workflow.StageApprovedByDirector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Transition(tt.from, tt.roles, workflow.ActionApprove, tt.leaveType, "")

			assert.NoError(t, err)
			assert.Equal(t, tt.from, d.From)
			assert.Equal(t, tt.want, d.To)
			assert.Nil(t, d.Comment)
		})
	}
}

func TestEngine_Transition_Reject(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name  string
		roles workflow.RoleSet
		from  workflow.Stage
		want  workflow.Stage
	}{
		{"hr staff", roles(workflow.RoleHrStaff), workflow.StageAwaitingDepartmentReview, workflow.StageRejectedByHr},
		{"hr head", roles(workflow.RoleHrHead), workflow.StageAwaitingHrHeadReview, workflow.StageRejectedByHrHead},
		{"school head", roles(workflow.RoleSchoolHead), workflow.StageAwaitingSchoolHead, workflow.StageRejectedBySchoolHead},
		{"director", roles(workflow.RoleEducationDirector), workflow.StageApprovedBySchoolHeadAwaitingDirector, workflow.StageRejectedByDirector},
		{"director own review stage", roles(workflow.RoleEducationDirector), workflow.StageAwaitingDirectorReview, workflow.StageRejectedByDirector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Transition(tt.from, tt.roles, workflow.ActionReject, "annual leave", "not enough staff")

			assert.NoError(t, err)
			assert.Equal(t, tt.want, d.To)
			if assert.NotNil(t, d.Comment) {
				assert.Equal(t, "not enough staff", *d.Comment)
			}
		})
	}
}

func TestEngine_Transition_RoleGateIndependentOfStageGate(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		roles  workflow.RoleSet
		from   workflow.Stage
		action workflow.Action
	}{
		{"hr staff on school head stage", roles(workflow.RoleHrStaff), workflow.StageAwaitingSchoolHead, workflow.ActionApprove},
		{"hr staff on hr head stage", roles(workflow.RoleHrStaff), workflow.StageAwaitingHrHeadReview, workflow.ActionApprove},
		{"hr head on department review", roles(workflow.RoleHrHead), workflow.StageAwaitingDepartmentReview, workflow.ActionReject},
		{"school head on director queue", roles(workflow.RoleSchoolHead), workflow.StageApprovedByHrAwaitingDirector, workflow.ActionApprove},
		{"director on school head stage", roles(workflow.RoleEducationDirector), workflow.StageAwaitingSchoolHead, workflow.ActionApprove},
		{"department head never reviews", roles(workflow.RoleDepartmentHead), workflow.StageAwaitingDepartmentReview, workflow.ActionApprove},
		{"educator never reviews", roles(workflow.RoleEducator), workflow.StageAwaitingSchoolHead, workflow.ActionReject},
		{"empty role set", roles(), workflow.StageAwaitingDirectorReview, workflow.ActionApprove},
		{"unknown stage", roles(workflow.RoleSuperAdmin), workflow.Stage("draft"), workflow.ActionApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Transition(tt.from, tt.roles, tt.action, "annual leave", "reason")

			assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
			assert.Equal(t, apperror.CodeInvalidTransition, apperror.CodeOf(err))
		})
	}
}

func TestEngine_Transition_TerminalStagesAreFinal(t *testing.T) {
	e := newTestEngine()
	all := roles(workflow.AllRoles()...)

	for _, stage := range workflow.AllStages() {
		if !stage.IsTerminal() {
			continue
		}
		for _, action := range []workflow.Action{workflow.ActionApprove, workflow.ActionReject} {
			for _, role := range append(workflow.AllRoles(), 0) {
				rs := roles(role)
				_, err := e.Transition(stage, rs, action, "annual leave", "reason")
				assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition, "stage=%s action=%s role=%s", stage, action, role)
			}
			_, err := e.Transition(stage, all, action, "sick leave", "reason")
			assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
		}
	}
}

func TestEngine_Transition_SuperAdminSubsumesEveryRule(t *testing.T) {
	e := newTestEngine()
	superAdmin := roles(workflow.RoleSuperAdmin)
	checked := 0

	for _, rule := range workflow.TransitionRules() {
		for _, from := range rule.From {
			for _, leaveType := range []string{"annual leave", "sick leave"} {
				specific, err := e.Transition(from, roles(rule.Roles...), rule.Action, leaveType, "reason")
				assert.NoError(t, err)

				admin, err := e.Transition(from, superAdmin, rule.Action, leaveType, "reason")
				assert.NoError(t, err)
				assert.Equal(t, specific.To, admin.To, "rule=%s from=%s type=%s", rule.Name, from, leaveType)
				assert.Equal(t, specific.Comment, admin.Comment)
				checked++
			}
		}
	}
	assert.Equal(t, 2*2*(1+1+1+4), checked)
}

func TestEngine_Transition_ExhaustiveTable(t *testing.T) {
	e := newTestEngine()
	superAdmin := roles(workflow.RoleSuperAdmin)

	valid := 0
	for _, stage := range workflow.AllStages() {
		for _, action := range []workflow.Action{workflow.ActionApprove, workflow.ActionReject} {
			d, err := e.Transition(stage, superAdmin, action, "sick leave", "reason")
			if err != nil {
				assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
				continue
			}
			valid++
			assert.False(t, stage.IsTerminal())
			assert.True(t, d.To.IsValid())
			assert.NotEqual(t, workflow.PhasePending, d.To.Phase(), "a review never lands back in the pending phase")
		}
	}
	// 4 pending stages + 3 director-queue stages, each with approve and reject.
	assert.Equal(t, 14, valid)
}

func TestEngine_Transition_Comments(t *testing.T) {
	e := newTestEngine()

	t.Run("approve keeps blank comment untouched", func(t *testing.T) {
		d, err := e.Transition(workflow.StageAwaitingHrHeadReview, roles(workflow.RoleHrHead), workflow.ActionApprove, "", "   ")

		assert.NoError(t, err)
		assert.Nil(t, d.Comment)

		prior := "earlier note"
		req := workflow.Request{Stage: workflow.StageAwaitingHrHeadReview, Comment: &prior}
		next := d.Apply(req)
		assert.Equal(t, workflow.StageApprovedByHrHeadAwaitingDirector, next.Stage)
		assert.Equal(t, "earlier note", *next.Comment)
	})

	t.Run("approve attaches trimmed comment", func(t *testing.T) {
		d, err := e.Transition(workflow.StageAwaitingSchoolHead, roles(workflow.RoleSchoolHead), workflow.ActionApprove, "sick leave", "  get well ")

		assert.NoError(t, err)
		if assert.NotNil(t, d.Comment) {
			assert.Equal(t, "get well", *d.Comment)
		}
	})

	t.Run("hr reject defaults reason", func(t *testing.T) {
		for _, tc := range []struct {
			roles workflow.RoleSet
			from  workflow.Stage
		}{
			{roles(workflow.RoleHrStaff), workflow.StageAwaitingDepartmentReview},
			{roles(workflow.RoleHrHead), workflow.StageAwaitingHrHeadReview},
			{roles(workflow.RoleSuperAdmin), workflow.StageAwaitingDepartmentReview},
		} {
			d, err := e.Transition(tc.from, tc.roles, workflow.ActionReject, "", "")

			assert.NoError(t, err)
			if assert.NotNil(t, d.Comment) {
				assert.Equal(t, workflow.DefaultRejectionComment, *d.Comment)
			}
		}
	})

	t.Run("school head and director reject require reason", func(t *testing.T) {
		for _, tc := range []struct {
			roles workflow.RoleSet
			from  workflow.Stage
		}{
			{roles(workflow.RoleSchoolHead), workflow.StageAwaitingSchoolHead},
			{roles(workflow.RoleEducationDirector), workflow.StageAwaitingDirectorReview},
			{roles(workflow.RoleEducationDirector), workflow.StageApprovedByHrAwaitingDirector},
			{roles(workflow.RoleSuperAdmin), workflow.StageAwaitingSchoolHead},
		} {
			_, err := e.Transition(tc.from, tc.roles, workflow.ActionReject, "", " ")

			assert.ErrorIs(t, err, workflowerrors.ErrRejectionReasonRequired)
			assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))
		}
	})

	t.Run("stage gate is checked before reason", func(t *testing.T) {
		_, err := e.Transition(workflow.StageRejectedByHr, roles(workflow.RoleSchoolHead), workflow.ActionReject, "", "")

		assert.ErrorIs(t, err, workflowerrors.ErrInvalidTransition)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := e.Transition(workflow.StageAwaitingSchoolHead, roles(workflow.RoleSchoolHead), workflow.Action("escalate"), "", "")

		assert.ErrorIs(t, err, workflowerrors.ErrUnknownAction)
	})
}

func TestEngine_Submit(t *testing.T) {
	e := newTestEngine()

	t.Run("success picks initial stage", func(t *testing.T) {
		req, err := e.Submit(
			workflow.Actor{ID: "u-1", Roles: roles(workflow.RoleHrStaff)},
			workflow.Draft{StartDate: day(2026, 3, 10), EndDate: day(2026, 3, 12), LeaveType: "Annual Leave ", Reason: " family "},
		)

		assert.NoError(t, err)
		assert.Equal(t, "u-1", req.RequesterID)
		assert.Equal(t, workflow.StageAwaitingHrHeadReview, req.Stage)
		assert.Equal(t, "annual leave", req.LeaveType)
		assert.Equal(t, "family", req.Reason)
		assert.Nil(t, req.Comment)
	})

	t.Run("same day leave is allowed", func(t *testing.T) {
		_, err := e.Submit(
			workflow.Actor{ID: "u-1"},
			workflow.Draft{StartDate: day(2026, 3, 10), EndDate: day(2026, 3, 10), LeaveType: "sick leave", Reason: "flu"},
		)

		assert.NoError(t, err)
	})

	t.Run("negative start in the past", func(t *testing.T) {
		_, err := e.Submit(
			workflow.Actor{ID: "u-1"},
			workflow.Draft{StartDate: day(2026, 3, 9), EndDate: day(2026, 3, 12), LeaveType: "sick leave", Reason: "flu"},
		)

		assert.ErrorIs(t, err, workflowerrors.ErrStartDateInPast)
	})

	t.Run("negative end before start", func(t *testing.T) {
		_, err := e.Submit(
			workflow.Actor{ID: "u-1"},
			workflow.Draft{StartDate: day(2026, 3, 12), EndDate: day(2026, 3, 11), LeaveType: "sick leave", Reason: "flu"},
		)

		assert.ErrorIs(t, err, workflowerrors.ErrInvalidDateRange)
	})

	t.Run("negative missing fields", func(t *testing.T) {
		_, err := e.Submit(workflow.Actor{ID: "u-1"}, workflow.Draft{StartDate: day(2026, 3, 12), EndDate: day(2026, 3, 12), Reason: "flu"})
		assert.ErrorIs(t, err, workflowerrors.ErrLeaveTypeRequired)

		_, err = e.Submit(workflow.Actor{ID: "u-1"}, workflow.Draft{StartDate: day(2026, 3, 12), EndDate: day(2026, 3, 12), LeaveType: "sick"})
		assert.ErrorIs(t, err, workflowerrors.ErrReasonRequired)
	})
}

func TestEngine_EditAndDelete(t *testing.T) {
	e := newTestEngine()
	owner := workflow.Actor{ID: "owner", Roles: roles(workflow.RoleEducator)}
	stranger := workflow.Actor{ID: "other", Roles: roles(workflow.RoleSuperAdmin)}

	base := workflow.Request{
		RequesterID: "owner",
		StartDate:   day(2026, 3, 1),
		EndDate:     day(2026, 3, 20),
		LeaveType:   "sick leave",
		Reason:      "surgery",
	}

	for _, stage := range workflow.AllStages() {
		req := base
		req.Stage = stage

		t.Run("non owner forbidden at "+stage.String(), func(t *testing.T) {
			_, err := e.Edit(req, stranger, workflow.Patch{})
			assert.ErrorIs(t, err, workflowerrors.ErrNotOwner)
			assert.Equal(t, apperror.CodeForbidden, apperror.CodeOf(err))

			assert.ErrorIs(t, e.Delete(req, stranger), workflowerrors.ErrNotOwner)
		})

		t.Run("owner at "+stage.String(), func(t *testing.T) {
			reason := "recovery"
			out, editErr := e.Edit(req, owner, workflow.Patch{Reason: &reason})
			delErr := e.Delete(req, owner)

			if stage.IsPending() {
				assert.NoError(t, editErr)
				assert.NoError(t, delErr)
				assert.Equal(t, "recovery", out.Reason)
				assert.Equal(t, stage, out.Stage)
				return
			}
			assert.ErrorIs(t, editErr, workflowerrors.ErrInvalidState)
			assert.ErrorIs(t, delErr, workflowerrors.ErrInvalidState)
			assert.Equal(t, apperror.CodeInvalidState, apperror.CodeOf(delErr))
		})
	}

	t.Run("edit validates dates", func(t *testing.T) {
		req := base
		req.Stage = workflow.StageAwaitingSchoolHead

		past := day(2026, 3, 2)
		_, err := e.Edit(req, owner, workflow.Patch{StartDate: &past})
		assert.ErrorIs(t, err, workflowerrors.ErrStartDateInPast)

		end := day(2026, 2, 28)
		_, err = e.Edit(req, owner, workflow.Patch{EndDate: &end})
		assert.ErrorIs(t, err, workflowerrors.ErrInvalidDateRange)

		start, newEnd := day(2026, 4, 1), day(2026, 4, 3)
		out, err := e.Edit(req, owner, workflow.Patch{StartDate: &start, EndDate: &newEnd})
		assert.NoError(t, err)
		assert.Equal(t, start, out.StartDate)
		assert.Equal(t, newEnd, out.EndDate)
	})

	t.Run("edit replaces attachment and normalizes type", func(t *testing.T) {
		req := base
		req.Stage = workflow.StageAwaitingDirectorReview
		old := "leave-files/a.pdf"
		req.Attachment = &old

		ref, typ := "leave-files/b.pdf", " ANNUAL LEAVE"
		out, err := e.Edit(req, owner, workflow.Patch{Attachment: &ref, LeaveType: &typ})

		assert.NoError(t, err)
		assert.Equal(t, "leave-files/b.pdf", *out.Attachment)
		assert.Equal(t, "leave-files/a.pdf", *req.Attachment)
		assert.Equal(t, "annual leave", out.LeaveType)
		assert.Equal(t, workflow.StageAwaitingDirectorReview, out.Stage)
	})

	t.Run("anonymous actor is never the owner", func(t *testing.T) {
		req := workflow.Request{Stage: workflow.StageAwaitingSchoolHead}

		err := e.Delete(req, workflow.Actor{})

		assert.True(t, errors.Is(err, workflowerrors.ErrNotOwner))
	})
}
