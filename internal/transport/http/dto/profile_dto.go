package dto

type ProfileResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name"`
	Birthday       string `json:"birthday,omitempty"`
	EducationLevel string `json:"education_level,omitempty"`
	HeightCM       int    `json:"height_cm,omitempty"`
	WeightKG       int    `json:"weight_kg,omitempty"`
	MBTIType       string `json:"mbti_type,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type ProfileUpdateRequest struct {
	Name           *string `json:"name"`
	Birthday       *string `json:"birthday"`
	EducationLevel *string `json:"education_level"`
	HeightCM       *int    `json:"height_cm"`
	WeightKG       *int    `json:"weight_kg"`
	MBTIType       *string `json:"mbti_type"`
}
