package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/storage"
)

// PostWithAuthor is a post joined with its author for feed responses.
type PostWithAuthor struct {
	postit.Post
	Author postit.User `json:"author"`
}

type postListData struct {
	Posts      []PostWithAuthor `json:"posts"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

type postCountData struct {
	Count int `json:"count"`
}

type massUpdateData struct {
	Updated int64 `json:"updated"`
}

type massDeleteData struct {
	Deleted int64 `json:"deleted"`
}

// ListPosts serves the cursor-paginated feed, newest first. Regular users
// see approved posts plus their own; moderators see everything.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	q := r.URL.Query()

	filter := storage.PostFilter{
		AuthorID: q.Get("authorId"),
		Status:   postit.PostStatus(q.Get("status")),
		Cursor:   parsePostCursor(r),
		Limit:    parsePostLimit(r) + 1,
	}
	if filter.Status != "" && !postit.ValidStatus(filter.Status) {
		writeError(w, MsgBadRequest, "unknown post status")
		return
	}
	if !user.Role.CanModerate() && filter.AuthorID != user.ID {
		// Unapproved posts by other authors stay out of the feed.
		filter.Status = postit.StatusApproved
	}

	posts, err := a.store.ListPosts(r.Context(), filter)
	if err != nil {
		mapError(w, err)
		return
	}

	nextCursor := ""
	if len(posts) == filter.Limit {
		posts = posts[:filter.Limit-1]
		nextCursor = posts[len(posts)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	joined, err := a.joinAuthors(r, posts)
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	writeOK(w, "Posts fetched", postListData{Posts: joined, NextCursor: nextCursor})
}

// joinAuthors resolves each distinct author once.
func (a *API) joinAuthors(r *http.Request, posts []postit.Post) ([]PostWithAuthor, error) {
	authors := make(map[string]postit.User)
	joined := make([]PostWithAuthor, 0, len(posts))

	for _, p := range posts {
		author, ok := authors[p.AuthorID]
		if !ok {
			var err error
			author, err = a.store.GetUser(r.Context(), p.AuthorID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			author.Password = ""
			authors[p.AuthorID] = author
		}
		joined = append(joined, PostWithAuthor{Post: p, Author: author})
	}
	return joined, nil
}

// GetPost returns a single post. Posts still in moderation are visible only
// to their author and to moderators; everyone else gets a 404 rather than a
// hint that the post exists.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	post, err := a.store.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		mapError(w, err)
		return
	}
	if post.Status != postit.StatusApproved && post.AuthorID != user.ID && !user.Role.CanModerate() {
		writeError(w, MsgNotFound, "post not found")
		return
	}

	joined, err := a.joinAuthors(r, []postit.Post{post})
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}

	writeOK(w, "Post fetched", joined[0])
}

// CountPosts returns how many posts an author has. Defaults to the caller.
func (a *API) CountPosts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	authorID := r.URL.Query().Get("authorId")
	if authorID == "" {
		authorID = user.ID
	}

	count, err := a.store.CountPostsByAuthor(r.Context(), authorID)
	if err != nil {
		mapError(w, err)
		return
	}

	writeOK(w, "Post count fetched", postCountData{Count: count})
}

type createPostRequest struct {
	Content     string               `json:"content"`
	Metadata    *postit.LinkMetadata `json:"metadata"`
	Attachments []postit.Attachment  `json:"attachments"`
}

// CreatePost stores a new post in whatever status the profanity screen
// assigns it. A screening failure parks the post in pending rather than
// blocking or waving it through.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	p, err := a.prefs.Get(r.Context())
	if err != nil {
		writeError(w, MsgInternalServerError, err.Error())
		return
	}
	if !p.IsPostCreateEnabled {
		writeError(w, MsgForbidden, "Post creation is currently disabled")
		return
	}
	if user.IsRestricted {
		writeError(w, MsgForbidden, "You are restricted from creating posts")
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, MsgBadRequest, "invalid request body")
		return
	}
	if err := postit.ValidateContent(req.Content); err != nil {
		mapError(w, err)
		return
	}
	for _, att := range req.Attachments {
		if err := postit.ValidateAttachment(att); err != nil {
			mapError(w, err)
			return
		}
	}

	status, err := a.classifier.Classify(r.Context(), req.Content)
	if err != nil {
		a.audit.logFailure(AuditPostCreated, r, "profanity screen failed", slog.String("error", err.Error()))
		status = postit.StatusPending
	}

	now := time.Now().UTC()
	post := postit.Post{
		ID:          uuid.NewString(),
		Content:     req.Content,
		Metadata:    req.Metadata,
		Attachments: req.Attachments,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
		AuthorID:    user.ID,
	}
	if err := a.store.CreatePost(r.Context(), post); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditPostCreated, r, user.ID, slog.String("post_id", post.ID), slog.String("status", string(post.Status)))
	writeEnvelope(w, MsgCreated, "Post created", post)
}

type updatePostRequest struct {
	Content *string            `json:"content"`
	Status  *postit.PostStatus `json:"status"`
}

// UpdatePost edits a post's content (author only, which sends it back
// through the profanity screen) or moves it through moderation (mods only).
func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	post, err := a.store.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		mapError(w, err)
		return
	}

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, MsgBadRequest, "invalid request body")
		return
	}

	if req.Content != nil {
		if post.AuthorID != user.ID {
			writeError(w, MsgForbidden, "You can only edit your own posts")
			return
		}
		if err := postit.ValidateContent(*req.Content); err != nil {
			mapError(w, err)
			return
		}
		post.Content = *req.Content

		status, err := a.classifier.Classify(r.Context(), post.Content)
		if err != nil {
			status = postit.StatusPending
		}
		post.Status = status
	}

	if req.Status != nil {
		if !user.Role.CanModerate() {
			writeError(w, MsgForbidden, "You are not allowed to moderate posts")
			return
		}
		if !postit.ValidStatus(*req.Status) {
			writeError(w, MsgBadRequest, "unknown post status")
			return
		}
		post.Status = *req.Status
	}

	post.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdatePost(r.Context(), post); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditPostUpdated, r, user.ID, slog.String("post_id", post.ID))
	writeOK(w, "Post updated", post)
}

// DeletePost removes a post. Authors delete their own; mods delete any.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	post, err := a.store.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		mapError(w, err)
		return
	}
	if post.AuthorID != user.ID && !user.Role.CanModerate() {
		writeError(w, MsgForbidden, "You can only delete your own posts")
		return
	}

	if err := a.store.DeletePost(r.Context(), post.ID); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditPostDeleted, r, user.ID, slog.String("post_id", post.ID))
	writeOK(w, "Post deleted", nil)
}

// ApprovePending approves every pending post in one sweep.
func (a *API) ApprovePending(w http.ResponseWriter, r *http.Request) {
	a.massModerate(w, r, postit.StatusApproved)
}

// RejectPending rejects every pending post in one sweep.
func (a *API) RejectPending(w http.ResponseWriter, r *http.Request) {
	a.massModerate(w, r, postit.StatusRejected)
}

func (a *API) massModerate(w http.ResponseWriter, r *http.Request, to postit.PostStatus) {
	updated, err := a.store.MassUpdateStatus(r.Context(), postit.StatusPending, to)
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditPostsMassModerated, r, userFromContext(r.Context()).ID,
		slog.String("to", string(to)), slog.Int64("updated", updated))
	writeOK(w, "Pending posts updated", massUpdateData{Updated: updated})
}

// DeletePending drops every pending post.
func (a *API) DeletePending(w http.ResponseWriter, r *http.Request) {
	deleted, err := a.store.DeletePostsByStatus(r.Context(), postit.StatusPending)
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditPostsMassModerated, r, userFromContext(r.Context()).ID,
		slog.String("to", "deleted"), slog.Int64("updated", deleted))
	writeOK(w, "Pending posts deleted", massDeleteData{Deleted: deleted})
}
