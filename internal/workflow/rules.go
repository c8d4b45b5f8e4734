package workflow

import (
	"fmt"
	"strings"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// LeaveTypeAnnual is the only leave type that changes routing: a school-head
// approval of annual leave still needs the director.
const LeaveTypeAnnual = "annual leave"

// DefaultRejectionComment is stored when an HR-level rejection has no reason.
const DefaultRejectionComment = "Rejected"

// NormalizeLeaveType is the stored form of a free-form leave type.
func NormalizeLeaveType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func IsAnnualLeave(leaveType string) bool {
	return NormalizeLeaveType(leaveType) == LeaveTypeAnnual
}

type ReasonPolicy int

const (
	// ReasonOptional attaches a non-blank comment and otherwise keeps the old one.
	ReasonOptional ReasonPolicy = iota
	// ReasonDefaulted stores DefaultRejectionComment when the reason is blank.
	ReasonDefaulted
	// ReasonRequired rejects a blank reason.
	ReasonRequired
)

// Rule is one row of the transition table.
type Rule struct {
	Name   string
	Action Action
	Roles  []Role
	From   []Stage
	To     Stage
	// ToAnnual overrides To for annual leave when set.
	ToAnnual Stage
	Reason   ReasonPolicy
}

func (r Rule) permits(roles RoleSet) bool {
	return roles.Has(RoleSuperAdmin) || roles.HasAny(r.Roles...)
}

func (r Rule) target(leaveType string) Stage {
	if r.ToAnnual != "" && IsAnnualLeave(leaveType) {
		return r.ToAnnual
	}
	return r.To
}

var directorQueue = []Stage{
	StageApprovedByHrAwaitingDirector,
	StageApprovedByHrHeadAwaitingDirector,
	StageApprovedBySchoolHeadAwaitingDirector,
	StageAwaitingDirectorReview,
}

var transitionRules = []Rule{
	{
		Name:   "hr_staff_approve",
		Action: ActionApprove,
		Roles:  []Role{RoleHrStaff},
		From:   []Stage{StageAwaitingDepartmentReview},
		To:     StageApprovedByHrAwaitingDirector,
		Reason: ReasonOptional,
	},
	{
		Name:   "hr_head_approve",
		Action: ActionApprove,
		Roles:  []Role{RoleHrHead},
		From:   []Stage{StageAwaitingHrHeadReview},
		To:     StageApprovedByHrHeadAwaitingDirector,
		Reason: ReasonOptional,
	},
	{
		Name:     "school_head_approve",
		Action:   ActionApprove,
		Roles:    []Role{RoleSchoolHead},
		From:     []Stage{StageAwaitingSchoolHead},
		To:       StageApprovedBySchoolHead,
		ToAnnual: StageApprovedBySchoolHeadAwaitingDirector,
		Reason:   ReasonOptional,
	},
	{
		Name:   "director_approve",
		Action: ActionApprove,
		Roles:  []Role{RoleEducationDirector},
		From:   directorQueue,
		To:     StageApprovedByDirector,
		Reason: ReasonOptional,
	},
	{
		Name:   "hr_staff_reject",
		Action: ActionReject,
		Roles:  []Role{RoleHrStaff},
		From:   []Stage{StageAwaitingDepartmentReview},
		To:     StageRejectedByHr,
		Reason: ReasonDefaulted,
	},
	{
		Name:   "hr_head_reject",
		Action: ActionReject,
		Roles:  []Role{RoleHrHead},
		From:   []Stage{StageAwaitingHrHeadReview},
		To:     StageRejectedByHrHead,
		Reason: ReasonDefaulted,
	},
	{
		Name:   "school_head_reject",
		Action: ActionReject,
		Roles:  []Role{RoleSchoolHead},
		From:   []Stage{StageAwaitingSchoolHead},
		To:     StageRejectedBySchoolHead,
		Reason: ReasonRequired,
	},
	{
		Name:   "director_reject",
		Action: ActionReject,
		Roles:  []Role{RoleEducationDirector},
		From:   directorQueue,
		To:     StageRejectedByDirector,
		Reason: ReasonRequired,
	},
}

type ruleKey struct {
	action Action
	from   Stage
}

var ruleIndex = buildRuleIndex(transitionRules)

// Each (action, stage) pair belongs to exactly one rule; the role gate is
// applied after the lookup.
func buildRuleIndex(rules []Rule) map[ruleKey]Rule {
	idx := make(map[ruleKey]Rule, len(rules)*2)
	for _, rule := range rules {
		for _, from := range rule.From {
			if from.IsTerminal() {
				panic(fmt.Sprintf("workflow: rule %s leaves terminal stage %s", rule.Name, from))
			}
			key := ruleKey{action: rule.Action, from: from}
			if prev, dup := idx[key]; dup {
				panic(fmt.Sprintf("workflow: rules %s and %s both handle %s from %s", prev.Name, rule.Name, rule.Action, from))
			}
			idx[key] = rule
		}
	}
	return idx
}

// TransitionRules returns a copy of the full transition table.
func TransitionRules() []Rule {
	out := make([]Rule, len(transitionRules))
	copy(out, transitionRules)
	return out
}
