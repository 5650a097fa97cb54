package repository

import (
	"database/sql"
	"fmt"
	"time"

	"nismah/internal/database"
	"nismah/internal/models"
)

// ForumRepository handles database operations for forum sections, posts and replies
type ForumRepository struct {
	db *database.DB
}

// NewForumRepository creates a new forum repository
func NewForumRepository(db *database.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

// ListSections retrieves all forum sections
func (r *ForumRepository) ListSections() ([]models.ForumSection, error) {
	query := "SELECT id, title, description, visibility, created_at FROM forum_sections ORDER BY id ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []models.ForumSection
	for rows.Next() {
		var s models.ForumSection
		var visibility string
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &visibility, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		s.Visibility = models.Visibility(visibility)
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// GetSection retrieves a section by ID, or nil if not found
func (r *ForumRepository) GetSection(sectionID int64) (*models.ForumSection, error) {
	query := "SELECT id, title, description, visibility, created_at FROM forum_sections WHERE id = ?"
	var s models.ForumSection
	var visibility string
	err := r.db.QueryRow(query, sectionID).Scan(&s.ID, &s.Title, &s.Description, &visibility, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	s.Visibility = models.Visibility(visibility)
	return &s, nil
}

// CreateSection inserts a forum section (used by seeding and moderation tooling)
func (r *ForumRepository) CreateSection(title, description string, visibility models.Visibility) (*models.ForumSection, error) {
	query := "INSERT INTO forum_sections (title, description, visibility) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, title, description, string(visibility))
	if err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return &models.ForumSection{
		ID:          id,
		Title:       title,
		Description: description,
		Visibility:  visibility,
		CreatedAt:   time.Now(),
	}, nil
}

// CountSections counts forum sections
func (r *ForumRepository) CountSections() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM forum_sections").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sections: %w", err)
	}
	return count, nil
}

// ListPosts retrieves all posts in a section, newest first
func (r *ForumRepository) ListPosts(sectionID int64) ([]models.ForumPost, error) {
	query := `
		SELECT p.id, p.section_id, p.author_id, a.name, p.title, p.body, p.created_at
		FROM forum_posts p
		INNER JOIN accounts a ON p.author_id = a.id
		WHERE p.section_id = ?
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []models.ForumPost
	for rows.Next() {
		var p models.ForumPost
		if err := rows.Scan(&p.ID, &p.SectionID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Body, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost retrieves a post by ID, or nil if not found
func (r *ForumRepository) GetPost(postID int64) (*models.ForumPost, error) {
	query := "SELECT id, section_id, author_id, title, body, created_at FROM forum_posts WHERE id = ?"
	var p models.ForumPost
	err := r.db.QueryRow(query, postID).Scan(&p.ID, &p.SectionID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

// CreatePost inserts a post into a section
func (r *ForumRepository) CreatePost(sectionID, authorID int64, title, body string) (*models.ForumPost, error) {
	query := "INSERT INTO forum_posts (section_id, author_id, title, body) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, sectionID, authorID, title, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return &models.ForumPost{
		ID:        id,
		SectionID: sectionID,
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}, nil
}

// ListReplies retrieves all replies to a post, oldest first
func (r *ForumRepository) ListReplies(postID int64) ([]models.ForumReply, error) {
	query := `
		SELECT r.id, r.post_id, r.author_id, a.name, r.body, r.created_at
		FROM forum_replies r
		INNER JOIN accounts a ON r.author_id = a.id
		WHERE r.post_id = ?
		ORDER BY r.created_at ASC
	`
	rows, err := r.db.Query(query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	var replies []models.ForumReply
	for rows.Next() {
		var reply models.ForumReply
		if err := rows.Scan(&reply.ID, &reply.PostID, &reply.AuthorID, &reply.AuthorName, &reply.Body, &reply.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, reply)
	}
	return replies, rows.Err()
}

// CreateReply inserts a reply to a post
func (r *ForumRepository) CreateReply(postID, authorID int64, body string) (*models.ForumReply, error) {
	query := "INSERT INTO forum_replies (post_id, author_id, body) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, postID, authorID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}
	return &models.ForumReply{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}, nil
}
