package workflow

type Stage string

const (
	StageAwaitingSchoolHead       Stage = "awaiting_school_head"
	StageAwaitingDepartmentReview Stage = "awaiting_department_review"
	StageAwaitingHrHeadReview     Stage = "awaiting_hr_head_review"
	StageAwaitingDirectorReview   Stage = "awaiting_director_review"

	StageApprovedByHrAwaitingDirector         Stage = "approved_by_hr_awaiting_director"
	StageApprovedByHrHeadAwaitingDirector     Stage = "approved_by_hr_head_awaiting_director"
	StageApprovedBySchoolHeadAwaitingDirector Stage = "approved_by_school_head_awaiting_director"

	StageApprovedBySchoolHead Stage = "approved_by_school_head"
	StageApprovedByDirector   Stage = "approved_by_director"
	StageRejectedByHr         Stage = "rejected_by_hr"
	StageRejectedByHrHead     Stage = "rejected_by_hr_head"
	StageRejectedBySchoolHead Stage = "rejected_by_school_head"
	StageRejectedByDirector   Stage = "rejected_by_director"
)

type Phase int

const (
	PhaseUnknown Phase = iota
	// PhasePending stages are still editable and deletable by the requester.
	PhasePending
	// PhaseAwaitingDirector stages are frozen for the requester but not final.
	PhaseAwaitingDirector
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseAwaitingDirector:
		return "awaiting_director"
	case PhaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

var stagePhases = map[Stage]Phase{
	StageAwaitingSchoolHead:       PhasePending,
	StageAwaitingDepartmentReview: PhasePending,
	StageAwaitingHrHeadReview:     PhasePending,
	StageAwaitingDirectorReview:   PhasePending,

	StageApprovedByHrAwaitingDirector:         PhaseAwaitingDirector,
	StageApprovedByHrHeadAwaitingDirector:     PhaseAwaitingDirector,
	StageApprovedBySchoolHeadAwaitingDirector: PhaseAwaitingDirector,

	StageApprovedBySchoolHead: PhaseTerminal,
	StageApprovedByDirector:   PhaseTerminal,
	StageRejectedByHr:         PhaseTerminal,
	StageRejectedByHrHead:     PhaseTerminal,
	StageRejectedBySchoolHead: PhaseTerminal,
	StageRejectedByDirector:   PhaseTerminal,
}

// AllStages lists every stage grouped by phase.
func AllStages() []Stage {
	return []Stage{
		StageAwaitingSchoolHead,
		StageAwaitingDepartmentReview,
		StageAwaitingHrHeadReview,
		StageAwaitingDirectorReview,
		StageApprovedByHrAwaitingDirector,
		StageApprovedByHrHeadAwaitingDirector,
		StageApprovedBySchoolHeadAwaitingDirector,
		StageApprovedBySchoolHead,
		StageApprovedByDirector,
		StageRejectedByHr,
		StageRejectedByHrHead,
		StageRejectedBySchoolHead,
		StageRejectedByDirector,
	}
}

// PendingStages lists the stages in which the requester may still edit or delete.
func PendingStages() []Stage {
	out := make([]Stage, 0, 4)
	for _, s := range AllStages() {
		if s.IsPending() {
			out = append(out, s)
		}
	}
	return out
}

func ParseStage(s string) (Stage, bool) {
	st := Stage(s)
	return st, st.IsValid()
}

func (s Stage) String() string {
	return string(s)
}

func (s Stage) Phase() Phase {
	return stagePhases[s]
}

func (s Stage) IsValid() bool {
	_, ok := stagePhases[s]
	return ok
}

func (s Stage) IsPending() bool {
	return s.Phase() == PhasePending
}

func (s Stage) IsTerminal() bool {
	return s.Phase() == PhaseTerminal
}

// IsRejected reports whether s is one of the terminal rejection stages.
func (s Stage) IsRejected() bool {
	switch s {
	case StageRejectedByHr, StageRejectedByHrHead, StageRejectedBySchoolHead, StageRejectedByDirector:
		return true
	}
	return false
}

func RejectedStages() []Stage {
	out := make([]Stage, 0, 4)
	for _, s := range AllStages() {
		if s.IsRejected() {
			out = append(out, s)
		}
	}
	return out
}
