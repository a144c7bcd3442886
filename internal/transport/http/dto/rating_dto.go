package dto

type RatingRequest struct {
	RatedID string `json:"rated_id"`
	Score   int    `json:"score"`
}

type RatingResponse struct {
	OK      bool   `json:"ok"`
	RatedID string `json:"rated_id"`
	Score   int    `json:"score"`
}

type RatingStatsResponse struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	MBTIType     string  `json:"mbti_type,omitempty"`
	AvatarURL    string  `json:"avatar_url,omitempty"`
	AverageScore float64 `json:"average_score"`
	RatingCount  int     `json:"rating_count"`
}

type LeaderboardResponse struct {
	Entries []RatingStatsResponse `json:"entries"`
}
