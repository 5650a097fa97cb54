package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nismah/internal/database"
	"nismah/internal/models"
	"nismah/internal/repository"
)

func newTestForumService(t *testing.T) (*ForumService, *AuthService) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	forumService := NewForumService(repository.NewForumRepository(db))
	if err := forumService.SeedDefaultSections(); err != nil {
		t.Fatalf("failed to seed sections: %v", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	authService := NewAuthService(db, accountRepo, familyRepo, time.Hour)
	return forumService, authService
}

func registerMinor(t *testing.T, authService *AuthService, email string) *models.Account {
	t.Helper()
	account, err := authService.Register(RegisterInput{
		Name:      "Teen Test",
		Email:     email,
		Password:  "password123",
		Role:      "INDEPENDENT_CHILD",
		BirthDate: minorBirthDate(15),
	})
	if err != nil {
		t.Fatalf("minor registration failed: %v", err)
	}
	return account
}

func sectionByVisibility(t *testing.T, sections []models.ForumSection, v models.Visibility) *models.ForumSection {
	t.Helper()
	for i := range sections {
		if sections[i].Visibility == v {
			return &sections[i]
		}
	}
	t.Fatalf("no section with visibility %s", v)
	return nil
}

func TestSeedDefaultSectionsIsIdempotent(t *testing.T) {
	forumService, _ := newTestForumService(t)

	if err := forumService.SeedDefaultSections(); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	admin := &models.Account{IsAdmin: true}
	sections, err := forumService.ListSections(admin)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	if len(sections) != 3 {
		t.Errorf("expected 3 seeded sections, got %d", len(sections))
	}
}

func TestListSectionsFiltersByRole(t *testing.T) {
	forumService, authService := newTestForumService(t)

	guardian, err := authService.Register(guardianInput("parent@example.com"))
	if err != nil {
		t.Fatalf("guardian registration failed: %v", err)
	}
	minor := registerMinor(t, authService, "teen@example.com")

	guardianSections, err := forumService.ListSections(guardian)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	for _, section := range guardianSections {
		if section.Visibility == models.VisibilityMinorsOnly {
			t.Errorf("guardian must not see minors-only section %q", section.Title)
		}
	}
	if len(guardianSections) != 2 {
		t.Errorf("guardian: expected 2 visible sections, got %d", len(guardianSections))
	}

	minorSections, err := forumService.ListSections(minor)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	for _, section := range minorSections {
		if section.Visibility == models.VisibilityGuardiansOnly {
			t.Errorf("minor must not see guardians-only section %q", section.Title)
		}
	}
	if len(minorSections) != 2 {
		t.Errorf("minor: expected 2 visible sections, got %d", len(minorSections))
	}
}

func TestCreatePostEnforcesVisibility(t *testing.T) {
	forumService, authService := newTestForumService(t)

	guardian, err := authService.Register(guardianInput("parent@example.com"))
	if err != nil {
		t.Fatalf("guardian registration failed: %v", err)
	}

	admin := &models.Account{IsAdmin: true}
	sections, err := forumService.ListSections(admin)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	kidsSection := sectionByVisibility(t, sections, models.VisibilityMinorsOnly)

	_, err = forumService.CreatePost(kidsSection.ID, guardian, "Hi", "A guardian wandering in")
	if !errors.Is(err, ErrSectionHidden) {
		t.Fatalf("expected ErrSectionHidden, got %v", err)
	}

	shared := sectionByVisibility(t, sections, models.VisibilityBoth)
	post, err := forumService.CreatePost(shared.ID, guardian, "Streetlights", "The park lights are out again")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if post.AuthorName != guardian.Name {
		t.Errorf("expected author name %q, got %q", guardian.Name, post.AuthorName)
	}
}

func TestRepliesFollowSectionVisibility(t *testing.T) {
	forumService, authService := newTestForumService(t)

	minor := registerMinor(t, authService, "teen@example.com")
	guardian, err := authService.Register(guardianInput("parent@example.com"))
	if err != nil {
		t.Fatalf("guardian registration failed: %v", err)
	}

	admin := &models.Account{IsAdmin: true}
	sections, err := forumService.ListSections(admin)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	kidsSection := sectionByVisibility(t, sections, models.VisibilityMinorsOnly)

	post, err := forumService.CreatePost(kidsSection.ID, minor, "Game night", "Who plays chess?")
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	if _, err := forumService.CreateReply(post.ID, guardian, "Me!"); !errors.Is(err, ErrSectionHidden) {
		t.Errorf("guardian reply in minors-only section: expected ErrSectionHidden, got %v", err)
	}
	if _, err := forumService.ListReplies(post.ID, guardian); !errors.Is(err, ErrSectionHidden) {
		t.Errorf("guardian listing minors-only replies: expected ErrSectionHidden, got %v", err)
	}

	reply, err := forumService.CreateReply(post.ID, minor, "I do")
	if err != nil {
		t.Fatalf("CreateReply() error = %v", err)
	}
	if reply.AuthorName != minor.Name {
		t.Errorf("expected author name %q, got %q", minor.Name, reply.AuthorName)
	}

	replies, err := forumService.ListReplies(post.ID, minor)
	if err != nil {
		t.Fatalf("ListReplies() error = %v", err)
	}
	if len(replies) != 1 {
		t.Errorf("expected 1 reply, got %d", len(replies))
	}
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	forumService, authService := newTestForumService(t)

	guardian, err := authService.Register(guardianInput("parent@example.com"))
	if err != nil {
		t.Fatalf("guardian registration failed: %v", err)
	}

	if _, err := forumService.CreatePost(1, guardian, "", "body"); !errors.Is(err, ErrEmptyPost) {
		t.Errorf("expected ErrEmptyPost for empty title, got %v", err)
	}
	if _, err := forumService.CreatePost(1, guardian, "title", ""); !errors.Is(err, ErrEmptyPost) {
		t.Errorf("expected ErrEmptyPost for empty body, got %v", err)
	}
}
