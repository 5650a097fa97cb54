package service

import (
	"fmt"
	"log"

	"nismah/internal/models"
	"nismah/internal/repository"
)

// DirectoryService handles the resource and counselor directory
type DirectoryService struct {
	directoryRepo *repository.DirectoryRepository
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(directoryRepo *repository.DirectoryRepository) *DirectoryService {
	return &DirectoryService{directoryRepo: directoryRepo}
}

// ListResources retrieves resources, optionally filtered by language
func (s *DirectoryService) ListResources(language string) ([]models.Resource, error) {
	return s.directoryRepo.ListResources(language)
}

// ListCounselors retrieves counselors, optionally filtered by language
func (s *DirectoryService) ListCounselors(language string) ([]models.Counselor, error) {
	return s.directoryRepo.ListCounselors(language)
}

// SeedDefaults populates the directory with stock listings on first boot
func (s *DirectoryService) SeedDefaults() error {
	if err := s.seedResources(); err != nil {
		return err
	}
	return s.seedCounselors()
}

func (s *DirectoryService) seedResources() error {
	count, err := s.directoryRepo.CountResources()
	if err != nil {
		return fmt.Errorf("failed to count resources: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		title, url, category, language string
	}{
		{"Online Safety Basics for Families", "https://www.staysafeonline.org/resources/online-safety-basics", "online-safety", "en"},
		{"Talking to Your Child About Bullying", "https://www.stopbullying.gov/resources/get-help-now", "bullying", "en"},
		{"Recognizing Signs of Abuse", "https://www.childwelfare.gov/topics/can/identifying", "abuse-prevention", "en"},
		{"أساسيات السلامة على الإنترنت", "https://www.staysafeonline.org/ar/resources", "online-safety", "ar"},
		{"كيف تتحدث مع طفلك عن التنمر", "https://www.stopbullying.gov/ar/resources", "bullying", "ar"},
	}
	for _, d := range defaults {
		if _, err := s.directoryRepo.CreateResource(d.title, d.url, d.category, d.language); err != nil {
			return fmt.Errorf("failed to seed resource %q: %w", d.title, err)
		}
	}
	log.Printf("Seeded %d default resources", len(defaults))
	return nil
}

func (s *DirectoryService) seedCounselors() error {
	count, err := s.directoryRepo.CountCounselors()
	if err != nil {
		return fmt.Errorf("failed to count counselors: %w", err)
	}
	if count > 0 {
		return nil
	}

	phone := "+1-555-0142"
	defaults := []struct {
		name, specialty, languages, email string
		phone                             *string
	}{
		{"Dr. Amira Haddad", "Child psychology", "en,ar", "amira.haddad@example.org", &phone},
		{"Sam Whitfield", "Family counseling", "en", "sam.whitfield@example.org", nil},
		{"Layla Nasser", "Trauma support", "ar", "layla.nasser@example.org", nil},
	}
	for _, d := range defaults {
		if _, err := s.directoryRepo.CreateCounselor(d.name, d.specialty, d.languages, d.email, d.phone); err != nil {
			return fmt.Errorf("failed to seed counselor %q: %w", d.name, err)
		}
	}
	log.Printf("Seeded %d default counselors", len(defaults))
	return nil
}
