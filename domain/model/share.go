package model

import "time"

const PlatformLinkedIn = "linkedin"

// Share is one post of a ContentItem to one platform by one user. Rows are never edited.
type Share struct {
	ID          int64     `json:"id" gorm:"column:id;primaryKey"`
	UserID      int64     `json:"user_id" gorm:"column:user_id"`
	ContentID   int64     `json:"content_id" gorm:"column:content_id"`
	Platform    string    `json:"platform" gorm:"column:platform"`
	PostContent string    `json:"post_content" gorm:"column:post_content"`
	PostURL     *string   `json:"post_url,omitempty" gorm:"column:post_url"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Share) TableName() string { return "shares" }

// PlatformShareCount is a per-platform aggregate of shares for one content item
type PlatformShareCount struct {
	Platform string `json:"platform" gorm:"column:platform"`
	Count    int64  `json:"count" gorm:"column:count"`
}

// ShareStats summarises the shares of a content item
type ShareStats struct {
	ContentID  int64                `json:"content_id"`
	Total      int64                `json:"total"`
	ByPlatform []PlatformShareCount `json:"by_platform"`
}

// PostReceipt is what the platform returned for a successful publish
type PostReceipt struct {
	PostID  string `json:"post_id"`
	PostURL string `json:"post_url"`
}
