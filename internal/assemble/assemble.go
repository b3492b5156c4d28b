// Package assemble builds the bounded textual context that accompanies a
// question to the language model.
//
// Assembly never fails a turn: every per-dataset problem (missing document,
// IO failure, unparseable CSV) degrades to a human-readable placeholder
// segment for that dataset only. The caller always receives a renderable
// bundle.
package assemble

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/classify"
	"github.com/fbcdesk/fbcdesk/internal/docstore"
	"github.com/fbcdesk/fbcdesk/internal/log"
	"github.com/fbcdesk/fbcdesk/internal/tabular"
)

// Placeholder texts for degraded or empty segments. Each explains the gap
// to the model (and to anyone reading the transcript) instead of silently
// dropping the dataset.
const (
	placeholderUnavailable = "data not available"
	placeholderNoRows      = "no rows match the requested filter"
	placeholderNoCategory  = "The question did not match any known document category. Answer from general knowledge and say which FBC documents would normally cover it."

	noCategorySource = "routing"
)

// Segment is one data source's contribution to the context.
// Text is never empty: empty results are mapped to a placeholder.
type Segment struct {
	Source string
	Text   string
}

// Bundle is the ordered textual evidence for one turn.
// It is built fresh per query and never reused across turns.
type Bundle struct {
	Segments []Segment
}

// Render concatenates all segments, each prefixed with its source name.
func (b Bundle) Render() string {
	parts := make([]string, len(b.Segments))
	for i, seg := range b.Segments {
		parts[i] = fmt.Sprintf("### %s\n%s", seg.Source, seg.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Config bounds the assembled context.
type Config struct {
	// MaxTableRows caps how many leading rows of a tabular dataset are
	// serialized. Default 5.
	MaxTableRows int

	// MaxTextChars caps how many characters of a text document are kept.
	// Default 1000.
	MaxTextChars int
}

// Assembler fetches the selected datasets and serializes them into a Bundle.
type Assembler struct {
	store  docstore.Store
	loader tabular.Loader
	cfg    Config
	logger log.Logger
}

// New creates an Assembler. Zero-value Config fields fall back to defaults.
func New(store docstore.Store, loader tabular.Loader, cfg Config, logger log.Logger) *Assembler {
	if cfg.MaxTableRows <= 0 {
		cfg.MaxTableRows = 5
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 1000
	}
	return &Assembler{store: store, loader: loader, cfg: cfg, logger: logger}
}

// Assemble builds the context bundle for a classified selection.
//
// Partial-failure semantics: a dataset that cannot be loaded or parsed
// contributes a placeholder segment; the error is logged and the remaining
// datasets are still assembled. An empty selection yields a single
// informational segment.
func (a *Assembler) Assemble(ctx context.Context, sel classify.Selection) Bundle {
	if len(sel.Datasets) == 0 {
		return Bundle{Segments: []Segment{{Source: noCategorySource, Text: placeholderNoCategory}}}
	}

	segments := make([]Segment, 0, len(sel.Datasets))
	for _, d := range sel.Datasets {
		segments = append(segments, a.segment(ctx, d, sel.Filter))
	}
	return Bundle{Segments: segments}
}

// segment builds one dataset's contribution, degrading to a placeholder on
// any failure.
func (a *Assembler) segment(ctx context.Context, d catalog.Descriptor, filter *classify.Criterion) Segment {
	data, err := a.store.Read(ctx, d.StoreKey)
	if err != nil {
		a.logger.Warn("loading dataset failed",
			"dataset", d.Name, "key", d.StoreKey, "error", err)
		return Segment{Source: d.Name, Text: placeholderUnavailable}
	}

	var text string
	switch d.Kind {
	case catalog.KindTabular:
		text, err = a.renderTabular(data, d, filter)
		if err != nil {
			a.logger.Warn("parsing dataset failed",
				"dataset", d.Name, "key", d.StoreKey, "error", err)
			return Segment{Source: d.Name, Text: placeholderUnavailable}
		}
	case catalog.KindText:
		text = truncate(string(data), a.cfg.MaxTextChars)
	}

	if strings.TrimSpace(text) == "" {
		text = placeholderUnavailable
	}
	return Segment{Source: d.Name, Text: text}
}

// renderTabular parses, projects, filters, and bounds a tabular dataset.
func (a *Assembler) renderTabular(data []byte, d catalog.Descriptor, filter *classify.Criterion) (string, error) {
	table, err := a.loader.Load(data)
	if err != nil {
		return "", err
	}

	if len(d.Columns) > 0 {
		table = table.Project(d.Columns)
	}

	if filter != nil && table.HasColumn(filter.Field) {
		table = table.FilterEq(filter.Field, strconv.Itoa(filter.Value))
		if len(table.Rows) == 0 {
			// An explicit empty-result notice, not an error: the model should
			// tell the user the entity has no data rather than hallucinate.
			return fmt.Sprintf("%s (%s = %d)", placeholderNoRows, filter.Field, filter.Value), nil
		}
	}

	return table.Head(a.cfg.MaxTableRows).Render(), nil
}

// truncate bounds s to max characters, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
