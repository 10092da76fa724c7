package selection

import (
	"path"
	"strings"

	"github.com/sdejongh/camharvest/pkg/models"
)

// excludeRule rejects names matching any glob pattern.
// Remote listings are flat, so patterns apply to the file name only:
//   - Simple glob patterns: *.tmp, .trashed-*
//   - Character classes: IMG_2023[01]*.jpg
//
// Patterns are matched case-insensitively.
type excludeRule struct {
	patterns []string
}

func newExcludeRule(patterns []string) (*excludeRule, []error) {
	var warnings []error
	rule := &excludeRule{}

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// a trailing slash targets directories, which never appear in the listing
		p = strings.TrimSuffix(p, "/")
		if _, err := path.Match(p, ""); err != nil {
			warnings = append(warnings, &models.ConfigParseWarning{Field: "exclude", Value: p, Err: err})
			continue
		}
		rule.patterns = append(rule.patterns, strings.ToLower(p))
	}

	if len(rule.patterns) == 0 {
		return nil, warnings
	}
	return rule, warnings
}

func (r *excludeRule) keep(f models.RemoteFile) bool {
	name := strings.ToLower(f.Name)
	for _, p := range r.patterns {
		if matched, _ := path.Match(p, name); matched {
			return false
		}
	}
	return true
}
