package theme

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/pamburus/termframe/pkg/format"
)

// SimilarityThreshold is the minimum normalized similarity for a fuzzy match
// to be accepted in place of an exact one.
const SimilarityThreshold = 0.75

// suggestionThreshold is the minimum similarity for "did you mean" hints.
const suggestionThreshold = 0.5

// NotFoundError reports a theme name with neither an exact nor a fuzzy match.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("theme: unknown theme %q", e.Name)
	}
	return fmt.Sprintf("theme: unknown theme %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

// AmbiguousError reports a theme name that fuzzily matches several themes.
type AmbiguousError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("theme: ambiguous theme %q matches %s", e.Name, strings.Join(e.Candidates, ", "))
}

// Library resolves theme names against the built-in set and a user theme
// directory holding <name>.toml, .yaml, .yml or .json files.
type Library struct {
	Dir    string
	Logger *slog.Logger
}

// NewLibrary returns a library over dir. An empty dir means built-ins only.
func NewLibrary(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{Dir: dir, Logger: logger}
}

func (l *Library) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *Library) userNames() ([]string, error) {
	if l.Dir == "" {
		return nil, nil
	}
	names, err := format.List(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return names, nil
}

// Names lists built-in and user theme names, sorted and deduplicated by
// normalized name. Built-ins shadow user themes of the same name.
func (l *Library) Names() ([]string, error) {
	user, err := l.userNames()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, n := range append(BuiltinNames(), user...) {
		key := thNormalize(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the theme called name. Built-ins are searched first, then the
// user directory. Without an exact match a single sufficiently similar name
// is accepted with a warning; several are an AmbiguousError.
func (l *Library) Load(name string) (*Theme, error) {
	key := thNormalize(name)
	if key == "" {
		return nil, &NotFoundError{Name: name}
	}
	if t, ok := Builtin(name); ok {
		return t, nil
	}

	user, err := l.userNames()
	if err != nil {
		return nil, err
	}
	for _, n := range user {
		if thNormalize(n) == key {
			return l.loadUser(n)
		}
	}

	names, err := l.Names()
	if err != nil {
		return nil, err
	}
	ranked := thRank(key, names)

	var matches []string
	for _, r := range ranked {
		if r.score >= SimilarityThreshold {
			matches = append(matches, r.name)
		}
	}
	switch len(matches) {
	case 0:
		var suggestions []string
		for _, r := range ranked {
			if r.score < suggestionThreshold || len(suggestions) == 3 {
				break
			}
			suggestions = append(suggestions, r.name)
		}
		return nil, &NotFoundError{Name: name, Suggestions: suggestions}
	case 1:
		l.logger().Warn("theme: using closest match", "requested", name, "theme", matches[0])
		if t, ok := Builtin(matches[0]); ok {
			return t, nil
		}
		return l.loadUser(matches[0])
	default:
		return nil, &AmbiguousError{Name: name, Candidates: matches}
	}
}

func (l *Library) loadUser(name string) (*Theme, error) {
	path, ok := format.Find(l.Dir, name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return LoadFile(name, path)
}

type thRanked struct {
	name  string
	score float64
}

// thRank scores every name against the normalized key, best first.
func thRank(key string, names []string) []thRanked {
	out := make([]thRanked, 0, len(names))
	for _, n := range names {
		out = append(out, thRanked{name: n, score: Similarity(key, thNormalize(n))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].name < out[j].name
	})
	return out
}

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
