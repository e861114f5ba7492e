package reconcile

import "strings"

// Warning line prefixes, one per category.
const (
	LabelMissingDisciplines   = "Disciplines not found by code: "
	LabelMissingDocumentTypes = "Document types not found by code: "
	LabelNameMismatches       = "Name mismatches: "
)

// Warnings collects the non-fatal problems of a run. Each list is
// deduplicated and kept in first-occurrence order.
type Warnings struct {
	MissingDisciplines   []string `json:"missingDisciplines,omitempty"`
	MissingDocumentTypes []string `json:"missingDocumentTypes,omitempty"`
	NameMismatches       []string `json:"nameMismatches,omitempty"`
}

// Empty reports whether no problem was recorded.
func (w Warnings) Empty() bool {
	return len(w.MissingDisciplines) == 0 &&
		len(w.MissingDocumentTypes) == 0 &&
		len(w.NameMismatches) == 0
}

// Lines flattens the categories into display lines. Empty categories are
// omitted. The result is never nil.
func (w Warnings) Lines() []string {
	lines := make([]string, 0, 3)
	if len(w.MissingDisciplines) > 0 {
		lines = append(lines, LabelMissingDisciplines+strings.Join(w.MissingDisciplines, ", "))
	}
	if len(w.MissingDocumentTypes) > 0 {
		lines = append(lines, LabelMissingDocumentTypes+strings.Join(w.MissingDocumentTypes, ", "))
	}
	if len(w.NameMismatches) > 0 {
		lines = append(lines, LabelNameMismatches+strings.Join(w.NameMismatches, "; "))
	}
	return lines
}

// MismatchDescription formats a name mismatch: the code, the submitted name
// and the catalog names registered under that code.
func MismatchDescription(code, submitted string, known []string) string {
	return code + " (" + submitted + ") - in catalog: " + strings.Join(known, ", ")
}

// warningSet accumulates one category.
type warningSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *warningSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

type warningCollector struct {
	disciplines   warningSet
	documentTypes warningSet
	mismatches    warningSet
}

func (c *warningCollector) warnings() Warnings {
	return Warnings{
		MissingDisciplines:   c.disciplines.items,
		MissingDocumentTypes: c.documentTypes.items,
		NameMismatches:       c.mismatches.items,
	}
}
