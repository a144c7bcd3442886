package dto

type SwipeRequest struct {
	TargetID string `json:"target_id"`
	IsLike   bool   `json:"is_like"`
}

type SwipeResponse struct {
	OK            bool  `json:"ok"`
	MatchCreated  bool  `json:"match_created"`
	MatchID       int64 `json:"match_id,omitempty"`
	PriorDecision *bool `json:"prior_decision,omitempty"`
}
