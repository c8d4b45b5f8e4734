package workflow

import (
	"fmt"
	"strings"
	"time"

	workflowerrors "go-leaveflow/internal/workflow/errors"
)

// Actor is the resolved identity acting on a request.
type Actor struct {
	ID    string
	Roles RoleSet
}

// Request is the part of a leave request the workflow reasons about.
type Request struct {
	RequesterID string
	StartDate   time.Time
	EndDate     time.Time
	LeaveType   string
	Reason      string
	Attachment  *string
	Stage       Stage
	Comment     *string
}

// Draft is a new request before a stage is assigned.
type Draft struct {
	StartDate  time.Time
	EndDate    time.Time
	LeaveType  string
	Reason     string
	Attachment *string
}

// Patch holds requester edits. Nil fields are left unchanged.
type Patch struct {
	StartDate  *time.Time
	EndDate    *time.Time
	LeaveType  *string
	Reason     *string
	Attachment *string
}

// Decision is the outcome of a successful transition.
type Decision struct {
	Rule   string
	Action Action
	From   Stage
	To     Stage
	// Comment is the reviewer comment to store, nil to keep the current one.
	Comment *string
}

// Engine evaluates workflow operations. It holds no state besides the clock,
// so the zero value is ready to use and safe for concurrent callers.
type Engine struct {
	Now func() time.Time
}

func NewEngine() Engine {
	return Engine{Now: time.Now}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Submit validates a draft and places it in the initial stage for the actor.
func (e Engine) Submit(actor Actor, d Draft) (Request, error) {
	req := Request{
		RequesterID: actor.ID,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		LeaveType:   NormalizeLeaveType(d.LeaveType),
		Reason:      strings.TrimSpace(d.Reason),
		Attachment:  d.Attachment,
		Stage:       InitialStage(actor.Roles),
	}
	if req.LeaveType == "" {
		return Request{}, workflowerrors.ErrLeaveTypeRequired
	}
	if req.Reason == "" {
		return Request{}, workflowerrors.ErrReasonRequired
	}
	if err := e.validateDates(req.StartDate, req.EndDate, true); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Transition decides the next stage for an approve or reject by roles.
func (e Engine) Transition(current Stage, roles RoleSet, action Action, leaveType, comment string) (Decision, error) {
	if !action.IsValid() {
		return Decision{}, workflowerrors.ErrUnknownAction
	}

	rule, ok := ruleIndex[ruleKey{action: action, from: current}]
	if !ok {
		return Decision{}, workflowerrors.ErrInvalidTransition.WithCause(
			fmt.Errorf("no %s transition from stage %q", action, current),
		)
	}
	if !rule.permits(roles) {
		return Decision{}, workflowerrors.ErrInvalidTransition.WithCause(
			fmt.Errorf("roles %v cannot %s at stage %q", roles.Strings(), action, current),
		)
	}

	d := Decision{
		Rule:   rule.Name,
		Action: action,
		From:   current,
		To:     rule.target(leaveType),
	}

	comment = strings.TrimSpace(comment)
	switch rule.Reason {
	case ReasonRequired:
		if comment == "" {
			return Decision{}, workflowerrors.ErrRejectionReasonRequired
		}
		d.Comment = &comment
	case ReasonDefaulted:
		if comment == "" {
			comment = DefaultRejectionComment
		}
		d.Comment = &comment
	default:
		if comment != "" {
			d.Comment = &comment
		}
	}
	return d, nil
}

// Apply returns req moved according to d.
func (d Decision) Apply(req Request) Request {
	req.Stage = d.To
	if d.Comment != nil {
		c := *d.Comment
		req.Comment = &c
	}
	return req
}

// CanModify checks the dual gate shared by Edit and Delete. Ownership is
// checked first so a non-owner never learns anything about the stage.
func CanModify(req Request, actor Actor) error {
	if actor.ID == "" || req.RequesterID != actor.ID {
		return workflowerrors.ErrNotOwner
	}
	if !req.Stage.IsPending() {
		return workflowerrors.ErrInvalidState.WithCause(
			fmt.Errorf("stage %q is %s", req.Stage, req.Stage.Phase()),
		)
	}
	return nil
}

// Edit applies a requester patch. The stage is never changed.
func (e Engine) Edit(req Request, actor Actor, p Patch) (Request, error) {
	if err := CanModify(req, actor); err != nil {
		return Request{}, err
	}

	out := req
	if p.StartDate != nil {
		out.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		out.EndDate = *p.EndDate
	}
	if p.LeaveType != nil {
		out.LeaveType = NormalizeLeaveType(*p.LeaveType)
		if out.LeaveType == "" {
			return Request{}, workflowerrors.ErrLeaveTypeRequired
		}
	}
	if p.Reason != nil {
		out.Reason = strings.TrimSpace(*p.Reason)
		if out.Reason == "" {
			return Request{}, workflowerrors.ErrReasonRequired
		}
	}
	if p.Attachment != nil {
		a := *p.Attachment
		out.Attachment = &a
	}
	// An untouched start date may already lie in the past; only a new one is
	// held to the "today or later" rule.
	if err := e.validateDates(out.StartDate, out.EndDate, p.StartDate != nil); err != nil {
		return Request{}, err
	}
	return out, nil
}

// Delete checks whether actor may delete req.
func (e Engine) Delete(req Request, actor Actor) error {
	return CanModify(req, actor)
}

func (e Engine) validateDates(start, end time.Time, checkToday bool) error {
	startDay, endDay := CalendarDay(start), CalendarDay(end)
	if endDay.Before(startDay) {
		return workflowerrors.ErrInvalidDateRange
	}
	if checkToday && startDay.Before(CalendarDay(e.now())) {
		return workflowerrors.ErrStartDateInPast
	}
	return nil
}

// CalendarDay truncates t to midnight UTC of its own calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
