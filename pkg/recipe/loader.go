package recipe

import (
	"os"
	"strings"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/logging"
	"gopkg.in/yaml.v3"
)

// rawTask mirrors one task entry as it appears on disk. A commented-out
// entry surfaces as a nil *rawTask in the sequence.
type rawTask struct {
	Action  string  `yaml:"action"`
	Src     string  `yaml:"src"`
	URL     string  `yaml:"url"`
	Ref     string  `yaml:"ref"`
	Subpath string  `yaml:"subpath"`
	Dest    string  `yaml:"dest"`
	Path    string  `yaml:"path"`
	Seconds float64 `yaml:"seconds"`
	Enabled *bool   `yaml:"enabled"`
}

type rawRecipe struct {
	Name  string     `yaml:"name"`
	Tasks []*rawTask `yaml:"tasks"`
}

// Load reads and parses the recipe file at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRecipeParse, "cannot read recipe %s", path)
	}
	return Parse(data)
}

// Parse parses raw recipe content into an ordered task list. txAdmin
// directive lines ($engine, $onesync, ...) are stripped before the YAML
// parse, matching how the upstream tool treats them.
func Parse(data []byte) (*Recipe, error) {
	logger := logging.GetLogger("recipe.loader")

	var raw rawRecipe
	if err := yaml.Unmarshal(stripDirectives(data), &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrRecipeParse, "recipe is not well-formed YAML")
	}

	r := &Recipe{Name: raw.Name}

	for _, entry := range raw.Tasks {
		if entry == nil {
			// A task whose lines were commented out leaves a null item
			// in the sequence. Never considered, counted separately from
			// explicitly disabled tasks.
			r.Commented++
			continue
		}

		task, err := buildTask(entry, len(r.Tasks))
		if err != nil {
			return nil, err
		}
		if !task.Enabled {
			r.Disabled++
		}
		r.Tasks = append(r.Tasks, task)
	}

	logger.Debug().
		Str("name", r.Name).
		Int("tasks", len(r.Tasks)).
		Int("commented", r.Commented).
		Int("disabled", r.Disabled).
		Msg("Recipe loaded")

	return r, nil
}

// buildTask validates one raw entry and assigns its order index.
func buildTask(entry *rawTask, index int) (Task, error) {
	kind, ok := actionKinds[entry.Action]
	if !ok {
		kind = KindUnrecognized
	}

	task := Task{
		Kind:        kind,
		Action:      entry.Action,
		Source:      entry.Src,
		Ref:         entry.Ref,
		Subpath:     entry.Subpath,
		Destination: entry.Dest,
		Seconds:     entry.Seconds,
		OrderIndex:  index,
		Enabled:     entry.Enabled == nil || *entry.Enabled,
	}

	// remove_path names its target with path rather than dest.
	if kind == KindRemovePath && task.Destination == "" {
		task.Destination = entry.Path
	}

	// download_file accepts url/path as aliases for src/dest, the field
	// names txAdmin recipes actually use.
	if kind == KindDownloadFile {
		if task.Source == "" {
			task.Source = entry.URL
		}
		if task.Destination == "" {
			task.Destination = entry.Path
		}
	}

	if err := validateTask(task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// validateTask enforces required fields per kind. Unrecognized and
// database tasks are deliberately not validated; they never execute.
func validateTask(t Task) error {
	switch t.Kind {
	case KindCloneRepo, KindDownloadFile:
		if t.Source == "" {
			return errors.Newf(errors.ErrRecipeSchema, "%s task #%d is missing src", t.Action, t.OrderIndex)
		}
		if t.Destination == "" {
			return errors.Newf(errors.ErrRecipeSchema, "%s task #%d is missing dest", t.Action, t.OrderIndex)
		}
	case KindUnzip, KindMovePath:
		if t.Source == "" {
			return errors.Newf(errors.ErrRecipeSchema, "%s task #%d is missing src", t.Action, t.OrderIndex)
		}
		if t.Destination == "" {
			return errors.Newf(errors.ErrRecipeSchema, "%s task #%d is missing dest", t.Action, t.OrderIndex)
		}
	case KindRemovePath:
		if t.Destination == "" {
			return errors.Newf(errors.ErrRecipeSchema, "%s task #%d is missing path", t.Action, t.OrderIndex)
		}
	}
	return nil
}

// stripDirectives removes lines beginning with $ before parsing.
func stripDirectives(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	filtered := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "$") {
			continue
		}
		filtered = append(filtered, line)
	}
	return []byte(strings.Join(filtered, "\n"))
}
