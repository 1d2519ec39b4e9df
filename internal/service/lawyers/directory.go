// Package lawyers serves the lawyer directory from embedded YAML.
package lawyers

import (
	"cmp"
	"embed"
	"fmt"
	"slices"
	"strings"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFiles embed.FS

// Directory is an immutable in-memory lawyer directory.
type Directory struct {
	lawyers  []models.LawyerProfile
	keywords map[string][]models.ServiceArea
}

var _ services.LawyerDirectory = (*Directory)(nil)

// NewDirectory loads the embedded sample directory.
func NewDirectory() (*Directory, error) {
	lawyersYAML, err := dataFiles.ReadFile("data/lawyers.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read lawyers: %w", err)
	}
	keywordsYAML, err := dataFiles.ReadFile("data/keywords.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords: %w", err)
	}
	return LoadDirectory(lawyersYAML, keywordsYAML)
}

// LoadDirectory parses a directory and its keyword map. Unknown practice
// areas are rejected so a typo cannot silently hide a lawyer from search.
func LoadDirectory(lawyersYAML, keywordsYAML []byte) (*Directory, error) {
	var lawyers []models.LawyerProfile
	if err := yaml.Unmarshal(lawyersYAML, &lawyers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lawyers: %w", err)
	}
	var keywords map[string][]models.ServiceArea
	if err := yaml.Unmarshal(keywordsYAML, &keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}

	for _, l := range lawyers {
		if l.ID == "" || l.Name == "" {
			return nil, fmt.Errorf("lawyer entry missing id or name: %+v", l)
		}
		for _, area := range l.PracticeAreas {
			if !slices.Contains(models.ServiceAreas, area) {
				return nil, fmt.Errorf("lawyer %s: unknown practice area %q", l.ID, area)
			}
		}
	}
	for keyword, areas := range keywords {
		for _, area := range areas {
			if !slices.Contains(models.ServiceAreas, area) {
				return nil, fmt.Errorf("keyword %q: unknown practice area %q", keyword, area)
			}
		}
	}

	return &Directory{lawyers: lawyers, keywords: keywords}, nil
}

func (d *Directory) Search(term, city string) []models.LawyerProfile {
	term = strings.ToLower(strings.TrimSpace(term))

	out := make([]models.LawyerProfile, 0, len(d.lawyers))
	for _, l := range d.lawyers {
		if term != "" && !d.matches(&l, term) {
			continue
		}
		if city != "" && l.City != city {
			continue
		}
		out = append(out, l)
	}

	slices.SortStableFunc(out, func(a, b models.LawyerProfile) int {
		if c := cmp.Compare(b.ExperienceYears, a.ExperienceYears); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// matches reports a keyword hit, a name hit, or a practice-area substring hit.
func (d *Directory) matches(l *models.LawyerProfile, term string) bool {
	for keyword, areas := range d.keywords {
		if !strings.Contains(term, keyword) {
			continue
		}
		for _, area := range areas {
			if l.HasArea(area) {
				return true
			}
		}
	}

	if strings.Contains(strings.ToLower(l.Name), term) {
		return true
	}
	for _, area := range l.PracticeAreas {
		if strings.Contains(strings.ToLower(string(area)), term) {
			return true
		}
	}
	return false
}

// Cities returns the distinct cities in the directory, sorted.
func (d *Directory) Cities() []string {
	cities := make([]string, 0, len(d.lawyers))
	for _, l := range d.lawyers {
		cities = append(cities, l.City)
	}
	slices.Sort(cities)
	return slices.Compact(cities)
}

// PracticeAreas returns every known practice area, sorted.
func (d *Directory) PracticeAreas() []models.ServiceArea {
	areas := slices.Clone(models.ServiceAreas)
	slices.Sort(areas)
	return areas
}
