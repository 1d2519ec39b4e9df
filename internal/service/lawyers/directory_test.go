package lawyers

import (
	"reflect"
	"slices"
	"testing"

	"dharmabot/internal/domain/models"
)

func ids(lawyers []models.LawyerProfile) []string {
	out := make([]string, 0, len(lawyers))
	for _, l := range lawyers {
		out = append(out, l.ID)
	}
	return out
}

func TestNewDirectory_LoadsEmbeddedData(t *testing.T) {
	d, err := NewDirectory()
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	if len(d.lawyers) == 0 || len(d.keywords) == 0 {
		t.Fatalf("directory empty: %d lawyers, %d keywords", len(d.lawyers), len(d.keywords))
	}
	if got := d.keywords["divorce"]; !slices.Contains(got, models.AreaFamilyLaw) {
		t.Errorf("divorce keyword areas = %v", got)
	}
}

func TestDirectory_Search(t *testing.T) {
	d, err := NewDirectory()
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	tests := []struct {
		name string
		term string
		city string
		want []string
	}{
		{
			name: "keyword maps to family law, experience then name",
			term: "Need help with a DIVORCE",
			want: []string{"lw-003", "lw-002", "lw-004", "lw-013", "lw-005"},
		},
		{
			name: "city filter only",
			city: "Thrissur",
			want: []string{"lw-002", "lw-014"},
		},
		{
			name: "keyword and city",
			term: "bail",
			city: "Thiruvananthapuram",
			want: []string{"lw-004", "lw-005"},
		},
		{
			name: "name substring",
			term: "kurian",
			want: []string{"lw-007"},
		},
		{
			name: "practice area substring",
			term: "arbitration & med",
			want: []string{"lw-012"},
		},
		{
			name: "city must match exactly",
			city: "thrissur",
			want: []string{},
		},
		{
			name: "no match",
			term: "zzz",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(d.Search(tt.term, tt.city))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q, %q) = %v, want %v", tt.term, tt.city, got, tt.want)
			}
		})
	}
}

func TestDirectory_SearchAllSorted(t *testing.T) {
	d, err := NewDirectory()
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	all := d.Search("  ", "")
	if len(all) != len(d.lawyers) {
		t.Fatalf("blank search returned %d of %d", len(all), len(d.lawyers))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ExperienceYears < all[i].ExperienceYears {
			t.Errorf("not sorted by experience at %d: %d < %d", i, all[i-1].ExperienceYears, all[i].ExperienceYears)
		}
	}
}

func TestDirectory_CitiesAndAreas(t *testing.T) {
	d, err := NewDirectory()
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	cities := d.Cities()
	if !slices.IsSorted(cities) {
		t.Errorf("cities not sorted: %v", cities)
	}
	if len(slices.Compact(slices.Clone(cities))) != len(cities) {
		t.Errorf("cities contain duplicates: %v", cities)
	}
	if !slices.Contains(cities, "Ernakulam") {
		t.Errorf("cities missing Ernakulam: %v", cities)
	}

	areas := d.PracticeAreas()
	if len(areas) != len(models.ServiceAreas) || !slices.IsSorted(areas) {
		t.Errorf("practice areas = %v", areas)
	}
}

func TestLoadDirectory_RejectsUnknownArea(t *testing.T) {
	lawyersYAML := []byte(`
- id: x
  name: X
  practice_areas: ["Space Law"]
  city: Kochi
`)
	if _, err := LoadDirectory(lawyersYAML, []byte(`{}`)); err == nil {
		t.Error("expected error for unknown practice area")
	}

	keywordsYAML := []byte(`"moon": ["Space Law"]`)
	if _, err := LoadDirectory([]byte(`[]`), keywordsYAML); err == nil {
		t.Error("expected error for unknown keyword area")
	}
}

func TestDirectory_NameTieBreak(t *testing.T) {
	d, err := LoadDirectory([]byte(`
- {id: b, name: beta, practice_areas: ["Civil Law"], city: Kochi, experience_years: 3}
- {id: a, name: Alpha, practice_areas: ["Civil Law"], city: Kochi, experience_years: 3}
- {id: c, name: Gamma, practice_areas: ["Civil Law"], city: Kochi, experience_years: 9}
`), []byte(`{}`))
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if got, want := ids(d.Search("", "")), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
