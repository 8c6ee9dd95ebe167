package recipefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

var patterns = []string{"*.yml", "*.yaml", "*.txt"}

// Loaded is a recipe read from a file.
type Loaded struct {
	Path   string
	Recipe model.RecipeInput
}

type LoadResult struct {
	Recipes  []Loaded
	Warnings []string
}

// ParseFile reads a recipe file, choosing the format by extension.
// Flat .txt recipes are named after the file.
func ParseFile(path string) (model.RecipeInput, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RecipeInput{}, nil, fmt.Errorf("read recipe file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		in, err := ParseYAML(data)
		return in, nil, err
	default:
		base := filepath.Base(path)
		if i := strings.Index(base, "."); i > 0 {
			base = base[:i]
		}
		return ParseFlat(strings.NewReader(string(data)), base)
	}
}

// LoadDir reads every recipe file in dir in name order. Files that cannot be
// parsed, have no name, or repeat an earlier recipe's name are skipped with
// a warning; the first file with a given name wins.
func LoadDir(dir string, log *zap.Logger) (LoadResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := os.Stat(dir)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open recipe directory: %w", err)
	}
	if !st.IsDir() {
		return LoadResult{}, fmt.Errorf("%s is not a directory", dir)
	}

	paths := make([]string, 0)
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return LoadResult{}, fmt.Errorf("glob %s: %w", p, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	result := LoadResult{Recipes: []Loaded{}, Warnings: []string{}}
	warn := func(path, msg string) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", filepath.Base(path), msg))
		log.Warn("recipe file skipped", zap.String("file", path), zap.String("reason", msg))
	}
	seen := map[string]string{}
	for _, path := range paths {
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		in, lineWarnings, err := ParseFile(path)
		for _, w := range lineWarnings {
			result.Warnings = append(result.Warnings, w)
			log.Warn("recipe line skipped", zap.String("file", path), zap.String("reason", w))
		}
		if errors.Is(err, ErrMissingName) {
			warn(path, "recipe does not contain a name")
			continue
		}
		if err != nil {
			warn(path, err.Error())
			continue
		}
		key := strings.ToLower(in.Name)
		if first, ok := seen[key]; ok {
			warn(path, fmt.Sprintf("duplicate recipe name %q (first in %s)", in.Name, filepath.Base(first)))
			continue
		}
		seen[key] = path
		log.Debug("recipe file loaded", zap.String("file", path), zap.String("recipe", in.Name))
		result.Recipes = append(result.Recipes, Loaded{Path: path, Recipe: in})
	}
	return result, nil
}
