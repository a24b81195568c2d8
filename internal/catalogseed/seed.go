// Package catalogseed loads sheets and problems from a YAML document into the
// catalog. Sheets are matched by name; an existing sheet is left untouched.
package catalogseed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/platform/ctxutil"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

type File struct {
	Sheets []Sheet `yaml:"sheets"`
}

type Sheet struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Icon        string    `yaml:"icon"`
	Active      *bool     `yaml:"active"`
	Problems    []Problem `yaml:"problems"`
}

type Problem struct {
	Title      string   `yaml:"title"`
	Order      int      `yaml:"order"`
	Difficulty string   `yaml:"difficulty"`
	Platform   string   `yaml:"platform"`
	Link       string   `yaml:"link"`
	Tags       []string `yaml:"tags"`
	Hints      []string `yaml:"hints"`
	Solution   Solution `yaml:"solution"`
}

type Solution struct {
	Code        map[string]string `yaml:"code"`
	Explanation string            `yaml:"explanation"`
}

type Result struct {
	SheetsCreated   int
	SheetsSkipped   int
	ProblemsCreated int
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Validate checks a parsed file without touching the catalog and reports every
// problem it finds.
func Validate(f *File) error {
	if f == nil {
		return nil
	}
	var errs []error
	names := make(map[string]bool, len(f.Sheets))
	for i, sh := range f.Sheets {
		key := strings.ToLower(strings.TrimSpace(sh.Name))
		if key == "" {
			errs = append(errs, fmt.Errorf("sheet %d: name is required", i+1))
		} else if names[key] {
			errs = append(errs, fmt.Errorf("sheet %q: duplicate name", sh.Name))
		}
		names[key] = true
		for j, p := range sh.Problems {
			where := fmt.Sprintf("sheet %q problem %d", sh.Name, j+1)
			if strings.TrimSpace(p.Title) == "" {
				errs = append(errs, fmt.Errorf("%s: title is required", where))
			}
			if p.Order < 1 {
				errs = append(errs, fmt.Errorf("%s: order must be >= 1", where))
			}
			d, err := types.ParseDifficulty(p.Difficulty)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			} else if d == "" {
				errs = append(errs, fmt.Errorf("%s: difficulty is required", where))
			}
			for k, h := range p.Hints {
				if strings.TrimSpace(h) == "" {
					errs = append(errs, fmt.Errorf("%s: hint %d is empty", where, k+1))
				}
			}
		}
	}
	return errors.Join(errs...)
}

type Seeder struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewSeeder(log *logger.Logger, catalog services.CatalogService) *Seeder {
	return &Seeder{log: log.With("component", "CatalogSeeder"), catalog: catalog}
}

// Seed writes every sheet of f whose name is not already in the catalog.
// A failed problem aborts the run; sheets created before it are kept.
func (s *Seeder) Seed(ctx context.Context, f *File) (Result, error) {
	var res Result
	if f == nil {
		return res, nil
	}
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: uuid.New(), Role: ctxutil.RoleAdmin})

	existing, err := s.catalog.ListSheets(ctx)
	if err != nil {
		return res, fmt.Errorf("list sheets: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, sh := range existing {
		seen[strings.ToLower(strings.TrimSpace(sh.Name))] = true
	}

	for _, sh := range f.Sheets {
		key := strings.ToLower(strings.TrimSpace(sh.Name))
		if seen[key] {
			s.log.Info("Sheet exists, skipping", "sheet", sh.Name)
			res.SheetsSkipped++
			continue
		}
		created, err := s.catalog.CreateSheet(ctx, services.SheetInput{
			Name:        sh.Name,
			Description: sh.Description,
			Icon:        sh.Icon,
			IsActive:    sh.Active,
		})
		if err != nil {
			return res, fmt.Errorf("create sheet %q: %w", sh.Name, err)
		}
		seen[key] = true
		res.SheetsCreated++

		for _, p := range sh.Problems {
			hints := p.Hints
			if _, err := s.catalog.CreateProblem(ctx, created.ID, services.ProblemInput{
				Fields: domainagg.ProblemFields{
					Title:               p.Title,
					Order:               p.Order,
					Difficulty:          p.Difficulty,
					Platform:            p.Platform,
					Link:                p.Link,
					Tags:                p.Tags,
					SolutionCode:        p.Solution.Code,
					SolutionExplanation: p.Solution.Explanation,
				},
				Hints: &hints,
			}); err != nil {
				return res, fmt.Errorf("create problem %q in %q: %w", p.Title, sh.Name, err)
			}
			res.ProblemsCreated++
		}
		s.log.Info("Seeded sheet", "sheet", sh.Name, "problems", len(sh.Problems))
	}
	return res, nil
}
