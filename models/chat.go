package models

import "time"

type Message struct {
	MsgID     string    `json:"msgid"`
	ChatID    string    `json:"chatId"`
	UserID    string    `json:"userid"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	EditedAt  time.Time `json:"editedAt,omitempty"`
}

type Chat struct {
	ChatID      string         `json:"chatId"`
	Users       []string       `json:"users"`
	LastMessage MessagePreview `json:"lastMessage"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type MessagePreview struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`
}
