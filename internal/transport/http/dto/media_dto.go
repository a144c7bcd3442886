package dto

type AvatarUploadResponse struct {
	OK        bool   `json:"ok"`
	AvatarKey string `json:"avatar_key"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
