package service

import (
	"errors"
	"fmt"
	"log"

	"nismah/internal/models"
	"nismah/internal/repository"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrSectionHidden   = errors.New("section not visible to this account")
	ErrEmptyPost       = errors.New("title and body are required")
)

// ForumService handles forum business logic and visibility enforcement
type ForumService struct {
	forumRepo *repository.ForumRepository
}

// NewForumService creates a new forum service
func NewForumService(forumRepo *repository.ForumRepository) *ForumService {
	return &ForumService{forumRepo: forumRepo}
}

// ListSections returns the sections visible to the viewer. Admins see all.
func (s *ForumService) ListSections(viewer *models.Account) ([]models.ForumSection, error) {
	sections, err := s.forumRepo.ListSections()
	if err != nil {
		return nil, err
	}
	if viewer.IsAdmin {
		return sections, nil
	}

	visible := make([]models.ForumSection, 0, len(sections))
	for _, section := range sections {
		if section.Visibility.Allows(viewer.Role) {
			visible = append(visible, section)
		}
	}
	return visible, nil
}

// visibleSection loads a section and enforces visibility for the viewer
func (s *ForumService) visibleSection(sectionID int64, viewer *models.Account) (*models.ForumSection, error) {
	section, err := s.forumRepo.GetSection(sectionID)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, ErrSectionNotFound
	}
	if !viewer.IsAdmin && !section.Visibility.Allows(viewer.Role) {
		return nil, ErrSectionHidden
	}
	return section, nil
}

// ListPosts returns the posts in a section the viewer may see
func (s *ForumService) ListPosts(sectionID int64, viewer *models.Account) ([]models.ForumPost, error) {
	if _, err := s.visibleSection(sectionID, viewer); err != nil {
		return nil, err
	}
	return s.forumRepo.ListPosts(sectionID)
}

// CreatePost adds a post to a section the author may see
func (s *ForumService) CreatePost(sectionID int64, author *models.Account, title, body string) (*models.ForumPost, error) {
	if title == "" || body == "" {
		return nil, ErrEmptyPost
	}
	if _, err := s.visibleSection(sectionID, author); err != nil {
		return nil, err
	}

	post, err := s.forumRepo.CreatePost(sectionID, author.ID, title, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.AuthorName = author.Name
	return post, nil
}

// ListReplies returns the replies to a post, checking section visibility
func (s *ForumService) ListReplies(postID int64, viewer *models.Account) ([]models.ForumReply, error) {
	post, err := s.forumRepo.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if _, err := s.visibleSection(post.SectionID, viewer); err != nil {
		return nil, err
	}
	return s.forumRepo.ListReplies(postID)
}

// CreateReply adds a reply to a post in a section the author may see
func (s *ForumService) CreateReply(postID int64, author *models.Account, body string) (*models.ForumReply, error) {
	if body == "" {
		return nil, ErrEmptyPost
	}
	post, err := s.forumRepo.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if _, err := s.visibleSection(post.SectionID, author); err != nil {
		return nil, err
	}

	reply, err := s.forumRepo.CreateReply(postID, author.ID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}
	reply.AuthorName = author.Name
	return reply, nil
}

// SeedDefaultSections creates the stock forum sections on first boot
func (s *ForumService) SeedDefaultSections() error {
	count, err := s.forumRepo.CountSections()
	if err != nil {
		return fmt.Errorf("failed to count sections: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		title       string
		description string
		visibility  models.Visibility
	}{
		{"Guardian Lounge", "A space for parents and guardians to share advice and experiences.", models.VisibilityGuardiansOnly},
		{"Kids Corner", "A safe space for young members to talk with each other.", models.VisibilityMinorsOnly},
		{"Community Safety", "Open discussions about keeping our neighborhoods safe.", models.VisibilityBoth},
	}
	for _, d := range defaults {
		if _, err := s.forumRepo.CreateSection(d.title, d.description, d.visibility); err != nil {
			return fmt.Errorf("failed to seed section %q: %w", d.title, err)
		}
	}
	log.Printf("Seeded %d default forum sections", len(defaults))
	return nil
}
