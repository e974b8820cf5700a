package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/books",
		Summary:     "List books",
		Description: "Returns the caller's books, most recently updated first",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/books",
		Summary:       "Add book",
		Description:   "Adds a book to the caller's shelf. Progress is derived from the page counts.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/search",
		Summary:     "Search books",
		Description: "Full-text search over the caller's books by title, author, publisher and ISBN",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}",
		Summary:     "Get book",
		Description: "Returns one of the caller's books",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/books/{id}",
		Summary:     "Update book",
		Description: "Applies the provided fields. Omitted fields keep their value; a blank optional field clears it.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes the book with its reading sessions and detaches it from postings, atomically",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse is the wire form of a book.
type BookResponse struct {
	ID               int64   `json:"id" doc:"Book ID"`
	UserID           int64   `json:"user_id" doc:"Owner ID"`
	Title            string  `json:"title" doc:"Title"`
	Author           string  `json:"author" doc:"Author"`
	Publisher        *string `json:"publisher,omitempty" doc:"Publisher"`
	PublishDate      *string `json:"publish_date,omitempty" doc:"Publication date as entered"`
	TotalPage        int     `json:"total_page" doc:"Page count"`
	ReadPage         int     `json:"read_page" doc:"Pages read so far; may exceed total_page"`
	Progress         float64 `json:"progress" doc:"Completion percentage, 0-100 with two decimals"`
	Status           string  `json:"status" enum:"reading,completed,not_started" doc:"Reading status"`
	StartDate        *string `json:"start_date,omitempty" doc:"Date reading started"`
	CompletedDate    *string `json:"completed_date,omitempty" doc:"Date reading finished"`
	TotalReadingTime int64   `json:"total_reading_time" doc:"Accumulated reading time in seconds"`
	Memo             *string `json:"memo,omitempty" doc:"Private notes (Markdown)"`
	Thumbnail        *string `json:"thumbnail,omitempty" doc:"Cover image URL"`
	ISBN             *string `json:"isbn,omitempty" doc:"ISBN-10 or ISBN-13"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		Title:            b.Title,
		Author:           b.Author,
		Publisher:        b.Publisher,
		PublishDate:      b.PublishDate,
		TotalPage:        b.TotalPage,
		ReadPage:         b.ReadPage,
		Progress:         b.Progress,
		Status:           b.Status.APIValue(),
		StartDate:        b.StartDate,
		CompletedDate:    b.CompletedDate,
		TotalReadingTime: b.TotalReadingTime,
		Memo:             b.Memo,
		Thumbnail:        b.Thumbnail,
		ISBN:             b.ISBN,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	_             struct{} `json:"-" additionalProperties:"true"`
	Title         string   `json:"title" doc:"Title"`
	Author        string   `json:"author" doc:"Author"`
	TotalPage     int      `json:"total_page" doc:"Page count"`
	ReadPage      *int     `json:"read_page,omitempty" nullable:"true" doc:"Pages already read"`
	Publisher     *string  `json:"publisher,omitempty" nullable:"true" doc:"Publisher"`
	PublishDate   *string  `json:"publish_date,omitempty" nullable:"true" doc:"Publication date"`
	Status        *string  `json:"status,omitempty" nullable:"true" doc:"reading (default), completed or not_started"`
	StartDate     *string  `json:"start_date,omitempty" nullable:"true" doc:"Date reading started"`
	CompletedDate *string  `json:"completed_date,omitempty" nullable:"true" doc:"Date reading finished"`
	Memo          *string  `json:"memo,omitempty" nullable:"true" doc:"Private notes; HTML is converted to Markdown"`
	Thumbnail     *string  `json:"thumbnail,omitempty" nullable:"true" doc:"Cover image URL"`
	ISBN          *string  `json:"isbn,omitempty" nullable:"true" doc:"ISBN"`
}

// CreateBookInput wraps the create request for huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// UpdateBookRequest is a partial update. Absent or null fields are left alone.
type UpdateBookRequest struct {
	_                struct{} `json:"-" additionalProperties:"true"`
	Title            *string  `json:"title,omitempty" nullable:"true" doc:"Title"`
	Author           *string  `json:"author,omitempty" nullable:"true" doc:"Author"`
	Publisher        *string  `json:"publisher,omitempty" nullable:"true" doc:"Publisher"`
	PublishDate      *string  `json:"publish_date,omitempty" nullable:"true" doc:"Publication date"`
	TotalPage        *int     `json:"total_page,omitempty" nullable:"true" doc:"Page count"`
	ReadPage         *int     `json:"read_page,omitempty" nullable:"true" doc:"Pages read"`
	Progress         *float64 `json:"progress,omitempty" nullable:"true" doc:"Explicit progress override (0-100); recomputed from pages when omitted"`
	Status           *string  `json:"status,omitempty" nullable:"true" doc:"reading, completed or not_started; anything else keeps the current status"`
	StartDate        *string  `json:"start_date,omitempty" nullable:"true" doc:"Date reading started"`
	CompletedDate    *string  `json:"completed_date,omitempty" nullable:"true" doc:"Date reading finished"`
	TotalReadingTime *int64   `json:"total_reading_time,omitempty" nullable:"true" doc:"Accumulated reading time in seconds"`
	Memo             *string  `json:"memo,omitempty" nullable:"true" doc:"Private notes"`
	Thumbnail        *string  `json:"thumbnail,omitempty" nullable:"true" doc:"Cover image URL"`
	ISBN             *string  `json:"isbn,omitempty" nullable:"true" doc:"ISBN"`
}

// UpdateBookInput wraps the update request for huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// BookIDInput addresses a single book.
type BookIDInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Book ID"`
}

// ListBooksInput is the (empty) input of the list operation.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
}

// SearchBooksInput carries the search query.
type SearchBooksInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search text"`
	Limit         int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
}

// BookOutput wraps a single book.
type BookOutput struct {
	Body BookResponse
}

// BookListOutput wraps a list of books.
type BookListOutput struct {
	Body []BookResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *ListBooksInput) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := input.Body
	book, err := s.services.Book.Create(ctx, userID, service.CreateBookInput{
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		PublishDate:   req.PublishDate,
		TotalPage:     &req.TotalPage,
		ReadPage:      req.ReadPage,
		Status:        req.Status,
		StartDate:     req.StartDate,
		CompletedDate: req.CompletedDate,
		Memo:          req.Memo,
		Thumbnail:     req.Thumbnail,
		ISBN:          req.ISBN,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.Search(ctx, userID, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := input.Body
	book, err := s.services.Book.Update(ctx, userID, input.ID, service.UpdateBookInput{
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		PublishDate:      req.PublishDate,
		TotalPage:        req.TotalPage,
		ReadPage:         req.ReadPage,
		Progress:         req.Progress,
		Status:           req.Status,
		StartDate:        req.StartDate,
		CompletedDate:    req.CompletedDate,
		TotalReadingTime: req.TotalReadingTime,
		Memo:             req.Memo,
		Thumbnail:        req.Thumbnail,
		ISBN:             req.ISBN,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
