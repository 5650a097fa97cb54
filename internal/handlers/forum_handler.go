package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nismah/internal/models"
	"nismah/internal/service"
)

// ForumHandler handles forum endpoints
type ForumHandler struct {
	forumService *service.ForumService
}

// NewForumHandler creates a new forum handler
func NewForumHandler(forumService *service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

func (h *ForumHandler) respondForumError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		respondWithError(w, http.StatusNotFound, "Section not found", "", nil)
	case errors.Is(err, service.ErrPostNotFound):
		respondWithError(w, http.StatusNotFound, "Post not found", "", nil)
	case errors.Is(err, service.ErrSectionHidden):
		respondWithError(w, http.StatusForbidden, "This section is not available to your account", "", nil)
	case errors.Is(err, service.ErrEmptyPost):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Forum request failed", "Forum request failed", err)
	}
}

// ListSections handles GET /api/forum/sections
func (h *ForumHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	viewer := AccountFromContext(r.Context())
	sections, err := h.forumService.ListSections(viewer)
	if err != nil {
		h.respondForumError(w, err)
		return
	}
	if sections == nil {
		sections = []models.ForumSection{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sections": sections})
}

// ListPosts handles GET /api/forum/sections/{id}/posts
func (h *ForumHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	sectionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid section ID", "", nil)
		return
	}

	viewer := AccountFromContext(r.Context())
	posts, err := h.forumService.ListPosts(sectionID, viewer)
	if err != nil {
		h.respondForumError(w, err)
		return
	}
	if posts == nil {
		posts = []models.ForumPost{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

type postRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreatePost handles POST /api/forum/sections/{id}/posts
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	sectionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid section ID", "", nil)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	author := AccountFromContext(r.Context())
	post, err := h.forumService.CreatePost(sectionID, author, req.Title, req.Body)
	if err != nil {
		h.respondForumError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"post": post})
}

// ListReplies handles GET /api/forum/posts/{id}/replies
func (h *ForumHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid post ID", "", nil)
		return
	}

	viewer := AccountFromContext(r.Context())
	replies, err := h.forumService.ListReplies(postID, viewer)
	if err != nil {
		h.respondForumError(w, err)
		return
	}
	if replies == nil {
		replies = []models.ForumReply{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"replies": replies})
}

type replyRequest struct {
	Body string `json:"body"`
}

// CreateReply handles POST /api/forum/posts/{id}/replies
func (h *ForumHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid post ID", "", nil)
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	author := AccountFromContext(r.Context())
	reply, err := h.forumService.CreateReply(postID, author, req.Body)
	if err != nil {
		h.respondForumError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"reply": reply})
}
