package patients

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/eyecare-clinic/console/pkg/common/models"
	"gopkg.in/yaml.v3"
)

var ErrEmptySeed = errors.New("seed file has no patients")

type seedFile struct {
	Patients []models.NewPatient `yaml:"patients"`
}

// LoadSeed reads demo patients from a YAML document of the form
//
//	patients:
//	  - name: Jane Doe
//	    age: 54
//	    ...
func LoadSeed(path string) ([]models.NewPatient, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return doc.Patients, nil
}

// Seed adds the patients in path when the store is empty and returns how many
// were added. A populated store is left alone. A seed file without patients
// fails with ErrEmptySeed.
func (s *Store) Seed(ctx context.Context, path string) (int, error) {
	existing, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seed, err := LoadSeed(path)
	if err != nil {
		return 0, err
	}
	if len(seed) == 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrEmptySeed)
	}
	for i, p := range seed {
		if _, err := s.Add(ctx, p); err != nil {
			return i, fmt.Errorf("seeding patient %q: %w", p.Name, err)
		}
	}
	return len(seed), nil
}
