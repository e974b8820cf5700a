package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/service"
)

func (s *Server) registerPostingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPostings",
		Method:      http.MethodGet,
		Path:        "/api/postings",
		Summary:     "List postings",
		Description: "Returns every posting, newest first, with likes, comments and the referenced book",
		Tags:        []string{"Postings"},
	}, s.handleListPostings)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPosting",
		Method:        http.MethodPost,
		Path:          "/api/postings",
		Summary:       "Create posting",
		Description:   "Publishes a posting, optionally about one of the caller's books",
		Tags:          []string{"Postings"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePosting)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPosting",
		Method:      http.MethodGet,
		Path:        "/api/postings/{id}",
		Summary:     "Get posting",
		Tags:        []string{"Postings"},
	}, s.handleGetPosting)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePosting",
		Method:      http.MethodPut,
		Path:        "/api/postings/{id}",
		Summary:     "Update posting",
		Description: "Edits a posting. Only its author may; anyone else gets 404.",
		Tags:        []string{"Postings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePosting)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePosting",
		Method:        http.MethodDelete,
		Path:          "/api/postings/{id}",
		Summary:       "Delete posting",
		Tags:          []string{"Postings"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePosting)

	huma.Register(s.api, huma.Operation{
		OperationID: "togglePostingLike",
		Method:      http.MethodPost,
		Path:        "/api/postings/{id}/like",
		Summary:     "Toggle like",
		Description: "Likes the posting, or removes the caller's like if present",
		Tags:        []string{"Postings"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addComment",
		Method:        http.MethodPost,
		Path:          "/api/postings/{id}/comments",
		Summary:       "Add comment",
		Tags:          []string{"Postings"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteComment",
		Method:        http.MethodDelete,
		Path:          "/api/postings/comments/{id}",
		Summary:       "Delete comment",
		Description:   "Deletes one of the caller's comments",
		Tags:          []string{"Postings"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// === DTOs ===

// UserSummaryResponse is the public identity of an author.
type UserSummaryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookSummaryResponse is the book a posting talks about.
type BookSummaryResponse struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Thumbnail *string `json:"thumbnail,omitempty"`
}

// CommentResponse is a comment on a posting.
type CommentResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	PostingID int64               `json:"posting_id"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
	User      UserSummaryResponse `json:"user"`
}

// PostingResponse is a posting with its resolved relations.
type PostingResponse struct {
	ID         int64                `json:"id"`
	UserID     int64                `json:"user_id"`
	BookID     *int64               `json:"book_id" doc:"Null once the book is deleted"`
	Title      string               `json:"title"`
	Content    string               `json:"content" doc:"Markdown"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	LikesCount int                  `json:"likes_count"`
	Comments   []CommentResponse    `json:"comments"`
	User       UserSummaryResponse  `json:"user"`
	Book       *BookSummaryResponse `json:"book"`
}

func toCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		PostingID: c.PostingID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		User:      UserSummaryResponse{ID: c.Author.ID, Name: c.Author.Name},
	}
}

func toPostingResponse(p *domain.PostingDetail) PostingResponse {
	comments := make([]CommentResponse, len(p.Comments))
	for i := range p.Comments {
		comments[i] = toCommentResponse(&p.Comments[i])
	}

	var book *BookSummaryResponse
	if p.Book != nil {
		book = &BookSummaryResponse{
			ID:        p.Book.ID,
			Title:     p.Book.Title,
			Author:    p.Book.Author,
			Thumbnail: p.Book.Thumbnail,
		}
	}

	return PostingResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		BookID:     p.BookID,
		Title:      p.Title,
		Content:    p.Content,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		LikesCount: p.LikesCount,
		Comments:   comments,
		User:       UserSummaryResponse{ID: p.Author.ID, Name: p.Author.Name},
		Book:       book,
	}
}

// CreatePostingRequest is the body of a new posting.
type CreatePostingRequest struct {
	_       struct{} `json:"-" additionalProperties:"true"`
	Title   string   `json:"title" minLength:"1" doc:"Title"`
	Content string   `json:"content" minLength:"1" doc:"Body; HTML is converted to Markdown"`
	BookID  *int64   `json:"book_id,omitempty" nullable:"true" doc:"One of the author's books"`
}

// CreatePostingInput wraps the create request for huma.
type CreatePostingInput struct {
	Authorization string `header:"Authorization"`
	Body          CreatePostingRequest
}

// UpdatePostingRequest is a partial update of a posting.
type UpdatePostingRequest struct {
	_       struct{} `json:"-" additionalProperties:"true"`
	Title   *string  `json:"title,omitempty" nullable:"true" doc:"New title"`
	Content *string  `json:"content,omitempty" nullable:"true" doc:"New body"`
}

// UpdatePostingInput wraps the update request for huma.
type UpdatePostingInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Posting ID"`
	Body          UpdatePostingRequest
}

// PostingIDInput addresses a posting (or, for comment deletion, a comment).
type PostingIDInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id"`
}

// AddCommentInput carries a new comment.
type AddCommentInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Posting ID"`
	Body          struct {
		Content string `json:"content" minLength:"1" doc:"Comment text"`
	}
}

// PostingOutput wraps one posting.
type PostingOutput struct {
	Body PostingResponse
}

// PostingListOutput wraps the posting feed.
type PostingListOutput struct {
	Body []PostingResponse
}

// LikeOutput reports the caller's like state after a toggle.
type LikeOutput struct {
	Body struct {
		Liked bool `json:"liked"`
	}
}

// CommentOutput wraps a created comment.
type CommentOutput struct {
	Body CommentResponse
}

// === Handlers ===

func (s *Server) handleListPostings(ctx context.Context, _ *struct{}) (*PostingListOutput, error) {
	postings, err := s.services.Posting.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PostingResponse, len(postings))
	for i, p := range postings {
		out[i] = toPostingResponse(p)
	}
	return &PostingListOutput{Body: out}, nil
}

func (s *Server) handleGetPosting(ctx context.Context, input *PostingIDInput) (*PostingOutput, error) {
	p, err := s.services.Posting.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostingOutput{Body: toPostingResponse(p)}, nil
}

func (s *Server) handleCreatePosting(ctx context.Context, input *CreatePostingInput) (*PostingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.services.Posting.Create(ctx, userID, service.CreatePostingInput{
		Title:   input.Body.Title,
		Content: input.Body.Content,
		BookID:  input.Body.BookID,
	})
	if err != nil {
		return nil, err
	}
	return &PostingOutput{Body: toPostingResponse(p)}, nil
}

func (s *Server) handleUpdatePosting(ctx context.Context, input *UpdatePostingInput) (*PostingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.services.Posting.Update(ctx, userID, input.ID, service.UpdatePostingInput{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &PostingOutput{Body: toPostingResponse(p)}, nil
}

func (s *Server) handleDeletePosting(ctx context.Context, input *PostingIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Posting.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleToggleLike(ctx context.Context, input *PostingIDInput) (*LikeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	liked, err := s.services.Posting.ToggleLike(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	out := &LikeOutput{}
	out.Body.Liked = liked
	return out, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Posting.AddComment(ctx, userID, input.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: toCommentResponse(c)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *PostingIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Posting.DeleteComment(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
