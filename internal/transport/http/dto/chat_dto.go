package dto

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

type MessageResponse struct {
	ID         int64  `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
	ReadAt     string `json:"read_at,omitempty"`
}

type ConversationResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type ThreadResponse struct {
	PartnerID     string `json:"partner_id"`
	LastContent   string `json:"last_content"`
	LastSenderID  string `json:"last_sender_id"`
	LastCreatedAt string `json:"last_created_at"`
	UnreadCount   int    `json:"unread_count"`
}

type ThreadsResponse struct {
	Threads []ThreadResponse `json:"threads"`
}

type MarkReadResponse struct {
	OK     bool  `json:"ok"`
	Marked int64 `json:"marked"`
}
