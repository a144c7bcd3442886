package dto

type CandidateResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Birthday       string `json:"birthday,omitempty"`
	EducationLevel string `json:"education_level,omitempty"`
	HeightCM       int    `json:"height_cm,omitempty"`
	WeightKG       int    `json:"weight_kg,omitempty"`
	MBTIType       string `json:"mbti_type,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
}

type FeedResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	NextCursor string              `json:"next_cursor,omitempty"`
	Remaining  int                 `json:"remaining"`
}
