// Package classify routes free-text questions to registered data sources.
//
// Routing is keyword OR-matching: every dataset whose keyword group matches
// the question is selected, in registry declaration order. There is no
// ranking or precedence between groups. Filter extraction ("franchise 42")
// is a best-effort heuristic, not a parser — it exists to narrow tabular
// context when the question plainly names an entity number, and silently
// yields nothing otherwise.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

// FilterField is the fixed column name an extracted entity number binds to.
const FilterField = "Number"

// entityPattern matches "<entity-keyword> <integer>", case-insensitively.
// Only the first match is used.
var entityPattern = regexp.MustCompile(`(?i)\bfranchise\s+#?(\d+)\b`)

// Criterion is a single equality constraint extracted from free text.
type Criterion struct {
	Field string
	Value int
}

// Selection is the classifier's verdict for one question: the datasets that
// should contribute context, and an optional entity filter.
//
// An empty Datasets slice is a valid verdict — the assembler substitutes an
// explicit "no matching category" context rather than failing.
type Selection struct {
	Datasets []catalog.Descriptor
	Filter   *Criterion
}

// Classifier matches questions against the registry's keyword groups.
type Classifier struct {
	registry *catalog.Registry
	logger   log.Logger
}

// New creates a Classifier over the given registry.
func New(registry *catalog.Registry, logger log.Logger) *Classifier {
	return &Classifier{registry: registry, logger: logger}
}

// Classify inspects the question and returns the matched datasets in
// registry order, plus any extracted entity filter. A question may match
// several keyword groups; all matches are returned.
func (c *Classifier) Classify(text string) Selection {
	lowered := strings.ToLower(text)

	var sel Selection
	for _, d := range c.registry.All() {
		if matchesAny(lowered, d.Keywords) {
			sel.Datasets = append(sel.Datasets, d)
		}
	}

	sel.Filter = extractFilter(text)

	names := make([]string, len(sel.Datasets))
	for i, d := range sel.Datasets {
		names[i] = d.Name
	}
	c.logger.Debug("classified query",
		"datasets", strings.Join(names, ","),
		"filtered", sel.Filter != nil,
	)

	return sel
}

// matchesAny reports whether any keyword occurs in the lowered text.
func matchesAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// extractFilter scans for the first "<entity-keyword> <integer>" occurrence.
// Returns nil when the text names no entity number.
func extractFilter(text string) *Criterion {
	m := entityPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// Digits beyond int range; treat as no filter rather than guessing.
		return nil
	}
	return &Criterion{Field: FilterField, Value: n}
}
