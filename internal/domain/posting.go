package domain

import "time"

// Posting is a user's write-up, optionally about one of their books.
// BookID becomes nil when that book is deleted; the posting itself survives.
type Posting struct {
	ID        int64
	UserID    int64
	BookID    *int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is a reply on a posting.
type Comment struct {
	ID        int64
	UserID    int64
	PostingID int64
	Content   string
	CreatedAt time.Time
	Author    UserSummary
}

// PostingDetail is a posting with its author, book, likes and comments resolved.
type PostingDetail struct {
	Posting
	Author     UserSummary
	Book       *BookSummary
	LikesCount int
	Comments   []Comment
}
