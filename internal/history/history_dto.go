package history

type HistoryResponse struct {
	ID         string  `json:"id"`
	EventType  string  `json:"event_type"`
	ActorID    string  `json:"actor_id"`
	FromStage  string  `json:"from_stage,omitempty"`
	ToStage    string  `json:"to_stage"`
	Comment    *string `json:"comment,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}
