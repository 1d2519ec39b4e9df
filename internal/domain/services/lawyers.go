package services

import "dharmabot/internal/domain/models"

// LawyerDirectory is the read-only lawyer search backing "Find a Lawyer".
type LawyerDirectory interface {
	// Search filters by a free-text term and an exact city, then orders by
	// experience (most first) and name. Empty arguments do not filter.
	Search(term, city string) []models.LawyerProfile
	Cities() []string
	PracticeAreas() []models.ServiceArea
}
