package dto

type MatchResponse struct {
	MatchID   int64  `json:"match_id"`
	PartnerID string `json:"partner_id"`
	Name      string `json:"name"`
	MBTIType  string `json:"mbti_type,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

type MatchesResponse struct {
	Matches []MatchResponse `json:"matches"`
}

type UnmatchRequest struct {
	PartnerID string `json:"partner_id"`
}

type UnmatchResponse struct {
	OK bool `json:"ok"`
}
