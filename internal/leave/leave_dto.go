package leave

import "go-leaveflow/internal/workflow"

type CreateLeaveRequest struct {
	LeaveType  string  `json:"leave_type" binding:"required,max=50"`
	StartDate  string  `json:"start_date" binding:"required,isodate"`
	EndDate    string  `json:"end_date" binding:"required,isodate"`
	Reason     string  `json:"reason" binding:"required"`
	Attachment *string `json:"attachment" binding:"omitempty,max=500"`
}

// UpdateLeaveRequest only changes the fields that are present.
type UpdateLeaveRequest struct {
	LeaveType  *string `json:"leave_type" binding:"omitempty,max=50"`
	StartDate  *string `json:"start_date" binding:"omitempty,isodate"`
	EndDate    *string `json:"end_date" binding:"omitempty,isodate"`
	Reason     *string `json:"reason"`
	Attachment *string `json:"attachment" binding:"omitempty,max=500"`
}

type ApproveLeaveRequest struct {
	Comment string `json:"comment"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason"`
}

type ListLeavesQuery struct {
	Page     int
	PageSize int
	Stage    string
}

type LeaveResponse struct {
	ID             string  `json:"id"`
	RequesterID    string  `json:"requester_id"`
	WorkSiteID     string  `json:"work_site_id,omitempty"`
	DepartmentID   string  `json:"department_id,omitempty"`
	LeaveType      string  `json:"leave_type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	TotalDays      int     `json:"total_days"`
	Reason         string  `json:"reason"`
	Attachment     *string `json:"attachment,omitempty"`
	Stage          string  `json:"stage"`
	Phase          string  `json:"phase"`
	Comment        *string `json:"comment,omitempty"`
	LastReviewedBy *string `json:"last_reviewed_by,omitempty"`
	LastReviewedAt *string `json:"last_reviewed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type SummaryResponse struct {
	Total            int64            `json:"total"`
	Pending          int64            `json:"pending"`
	AwaitingDirector int64            `json:"awaiting_director"`
	Approved         int64            `json:"approved"`
	Rejected         int64            `json:"rejected"`
	ByStage          map[string]int64 `json:"by_stage"`
}

func newSummary(counts map[string]int64) SummaryResponse {
	s := SummaryResponse{ByStage: make(map[string]int64, len(counts))}
	for name, n := range counts {
		s.ByStage[name] = n
		s.Total += n

		stage := workflow.Stage(name)
		switch {
		case stage.IsPending():
			s.Pending += n
		case stage.Phase() == workflow.PhaseAwaitingDirector:
			s.AwaitingDirector += n
		case stage.IsRejected():
			s.Rejected += n
		case stage.IsTerminal():
			s.Approved += n
		}
	}
	return s
}
