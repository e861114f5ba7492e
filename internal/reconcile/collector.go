package reconcile

// Link ties a discipline to one of its document types, with the DRS value
// given in the sheet.
type Link struct {
	DisciplineID   int64  `json:"disciplineId"`
	DocumentTypeID int64  `json:"documentTypeId"`
	DRS            string `json:"drs,omitempty"`
}

// Collector accumulates matches into the sets a caller needs to apply them:
// the distinct disciplines involved and the discipline/document-type links.
// Pass its Add method as the match callback.
type Collector struct {
	disciplineIDs []int64
	seen          map[int64]struct{}
	links         []Link
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[int64]struct{})}
}

// Add records a match.
func (c *Collector) Add(m MatchResult) {
	if _, ok := c.seen[m.Discipline.ID]; !ok {
		c.seen[m.Discipline.ID] = struct{}{}
		c.disciplineIDs = append(c.disciplineIDs, m.Discipline.ID)
	}
	c.links = append(c.links, Link{
		DisciplineID:   m.Discipline.ID,
		DocumentTypeID: m.DocumentType.ID,
		DRS:            m.DRS,
	})
}

// DisciplineIDs returns the distinct discipline IDs in first-match order.
func (c *Collector) DisciplineIDs() []int64 {
	return c.disciplineIDs
}

// Links returns every collected link in match order.
func (c *Collector) Links() []Link {
	return c.links
}

// Len returns the number of collected links.
func (c *Collector) Len() int {
	return len(c.links)
}
