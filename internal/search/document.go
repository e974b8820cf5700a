// Package search provides full-text search over a reader's books using Bleve.
package search

import (
	"strconv"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/normalize"
)

// BookDocument is the indexed form of a book.
type BookDocument struct {
	ID        string
	UserID    string
	Title     string
	Author    string
	Publisher string
	ISBN      string
	Status    string
	UpdatedAt int64
}

// docID is the Bleve document ID for a book.
func docID(bookID int64) string {
	return strconv.FormatInt(bookID, 10)
}

// NewBookDocument converts a book into its search document.
func NewBookDocument(b *domain.Book) *BookDocument {
	doc := &BookDocument{
		ID:        docID(b.ID),
		UserID:    strconv.FormatInt(b.UserID, 10),
		Title:     normalize.Text(b.Title),
		Author:    normalize.Text(b.Author),
		Status:    b.Status.APIValue(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
	}
	if b.Publisher != nil {
		doc.Publisher = normalize.Text(*b.Publisher)
	}
	if isbn := normalize.ISBN(b.ISBN); isbn != nil {
		doc.ISBN = *isbn
	}
	return doc
}

// ToMap converts the document to a map keyed by the mapped field names.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"user_id":    d.UserID,
		"title":      d.Title,
		"author":     d.Author,
		"status":     d.Status,
		"updated_at": d.UpdatedAt,
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	return m
}
