// Package selection decides which remote files a run transfers and in what order.
package selection

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sdejongh/camharvest/pkg/models"
)

const dateLayout = "2006-01-02"

var upper = cases.Upper(language.Und)

// Rules holds the enabled inclusion rules of one run. A file is kept only if
// every enabled rule keeps it.
type Rules struct {
	letter  *letterRule
	date    *dateRule
	exclude *excludeRule
}

// NewRules builds the rules enabled in cfg. Settings that cannot be parsed disable
// their rule and are returned as *models.ConfigParseWarning values.
func NewRules(cfg *models.SyncConfig) (*Rules, []error) {
	var warnings []error
	r := &Rules{}

	if cfg.LetterFilter.Enabled {
		rule, err := newLetterRule(cfg.LetterFilter.Start, cfg.LetterFilter.End)
		if err != nil {
			warnings = append(warnings, err)
		} else {
			r.letter = rule
		}
	}

	if cfg.DateFilter.Enabled {
		rule, err := newDateRule(cfg.DateFilter.Start, cfg.DateFilter.End, time.Local)
		if err != nil {
			warnings = append(warnings, err)
		} else {
			r.date = rule
		}
	}

	exclude, excludeWarnings := newExcludeRule(cfg.ExcludePatterns)
	warnings = append(warnings, excludeWarnings...)
	r.exclude = exclude

	return r, warnings
}

// Active reports whether any rule is enabled
func (r *Rules) Active() bool {
	return r.letter != nil || r.date != nil || r.exclude != nil
}

// Keep reports whether a single record passes every enabled rule
func (r *Rules) Keep(f models.RemoteFile) bool {
	if r.letter != nil && !r.letter.keep(f) {
		return false
	}
	if r.date != nil && !r.date.keep(f) {
		return false
	}
	if r.exclude != nil && !r.exclude.keep(f) {
		return false
	}
	return true
}

// Apply returns the kept records in input order and the number rejected
func (r *Rules) Apply(records []models.RemoteFile) ([]models.RemoteFile, int) {
	if !r.Active() {
		return records, 0
	}
	kept := make([]models.RemoteFile, 0, len(records))
	rejected := 0
	for _, f := range records {
		if r.Keep(f) {
			kept = append(kept, f)
		} else {
			rejected++
		}
	}
	return kept, rejected
}

// Filter applies the rules of cfg to records, ignoring parse warnings
func Filter(records []models.RemoteFile, cfg *models.SyncConfig) ([]models.RemoteFile, int) {
	rules, _ := NewRules(cfg)
	return rules.Apply(records)
}

type letterRule struct {
	start, end rune
}

func newLetterRule(start, end string) (*letterRule, error) {
	s, err := foldInitial(start)
	if err != nil {
		return nil, &models.ConfigParseWarning{Field: "letter_filter.start", Value: start, Err: err}
	}
	e, err := foldInitial(end)
	if err != nil {
		return nil, &models.ConfigParseWarning{Field: "letter_filter.end", Value: end, Err: err}
	}
	return &letterRule{start: s, end: e}, nil
}

func (r *letterRule) keep(f models.RemoteFile) bool {
	c, err := foldInitial(f.Name)
	if err != nil {
		return false
	}
	return r.start <= c && c <= r.end
}

// foldInitial returns the upper-cased first character of s
func foldInitial(s string) (rune, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError && size <= 1 {
		return 0, errors.New("invalid UTF-8")
	}
	folded, _ := utf8.DecodeRuneInString(upper.String(string(first)))
	return folded, nil
}

type dateRule struct {
	start, end time.Time
}

func newDateRule(start, end string, loc *time.Location) (*dateRule, error) {
	s, err := time.ParseInLocation(dateLayout, strings.TrimSpace(start), loc)
	if err != nil {
		return nil, &models.ConfigParseWarning{Field: "date_filter.start", Value: start, Err: err}
	}
	e, err := time.ParseInLocation(dateLayout, strings.TrimSpace(end), loc)
	if err != nil {
		return nil, &models.ConfigParseWarning{Field: "date_filter.end", Value: end, Err: err}
	}
	// through the last second of the end day
	e = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, loc)
	return &dateRule{start: s, end: e}, nil
}

func (r *dateRule) keep(f models.RemoteFile) bool {
	return !f.ModTime.Before(r.start) && !f.ModTime.After(r.end)
}
