package assemble

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/classify"
	"github.com/fbcdesk/fbcdesk/internal/docstore"
	"github.com/fbcdesk/fbcdesk/internal/log"
	"github.com/fbcdesk/fbcdesk/internal/tabular"
)

// fakeStore implements docstore.Store over a map.
type fakeStore struct {
	objects map[string][]byte
	errs    map[string]error
}

func (f *fakeStore) Read(_ context.Context, key string) ([]byte, error) {
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return data, nil
}

var (
	policyDesc = catalog.Descriptor{
		Name: "policy_franchise", StoreKey: "policy.txt", Kind: catalog.KindText,
	}
	salesDesc = catalog.Descriptor{
		Name: "metrics_sales", StoreKey: "sales.csv", Kind: catalog.KindTabular,
		Columns: []string{"Number", "MonthlySales"},
	}
)

const salesCSV = "Number,Region,MonthlySales\n7,South,9500\n42,East,15000\n"

func newAssembler(store docstore.Store) *Assembler {
	return New(store, tabular.CSVLoader{}, Config{}, log.NewNop())
}

func TestAssemble_TextDataset(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"policy.txt": []byte("Report weekly.")}}
	a := newAssembler(store)

	b := a.Assemble(context.Background(), classify.Selection{Datasets: []catalog.Descriptor{policyDesc}})
	if len(b.Segments) != 1 {
		t.Fatalf("Segments = %d, want 1", len(b.Segments))
	}
	if b.Segments[0].Source != "policy_franchise" || b.Segments[0].Text != "Report weekly." {
		t.Errorf("segment = %+v", b.Segments[0])
	}
}

func TestAssemble_TextTruncation(t *testing.T) {
	long := strings.Repeat("x", 5000)
	store := &fakeStore{objects: map[string][]byte{"policy.txt": []byte(long)}}
	a := New(store, tabular.CSVLoader{}, Config{MaxTextChars: 1000}, log.NewNop())

	b := a.Assemble(context.Background(), classify.Selection{Datasets: []catalog.Descriptor{policyDesc}})
	text := b.Segments[0].Text
	if len(text) != 1000+len("...") {
		t.Errorf("len(text) = %d, want %d", len(text), 1003)
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("truncated text missing ellipsis")
	}
}

func TestAssemble_TabularProjectionAndCap(t *testing.T) {
	rows := []string{"Number,Region,MonthlySales"}
	for i := 0; i < 20; i++ {
		rows = append(rows, "1,North,100")
	}
	store := &fakeStore{objects: map[string][]byte{"sales.csv": []byte(strings.Join(rows, "\n"))}}
	a := New(store, tabular.CSVLoader{}, Config{MaxTableRows: 5}, log.NewNop())

	b := a.Assemble(context.Background(), classify.Selection{Datasets: []catalog.Descriptor{salesDesc}})
	text := b.Segments[0].Text

	lines := strings.Split(text, "\n")
	if len(lines) != 6 { // header + 5 rows
		t.Fatalf("rendered %d lines, want 6:\n%s", len(lines), text)
	}
	if strings.Contains(lines[0], "Region") {
		t.Errorf("projection kept unlisted column: %q", lines[0])
	}
}

func TestAssemble_TabularFilter(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"sales.csv": []byte(salesCSV)}}
	a := newAssembler(store)

	sel := classify.Selection{
		Datasets: []catalog.Descriptor{salesDesc},
		Filter:   &classify.Criterion{Field: "Number", Value: 7},
	}
	b := a.Assemble(context.Background(), sel)
	text := b.Segments[0].Text

	if !strings.Contains(text, "9500") {
		t.Errorf("filtered table missing franchise 7 row:\n%s", text)
	}
	if strings.Contains(text, "15000") {
		t.Errorf("filtered table kept franchise 42 row:\n%s", text)
	}
}

func TestAssemble_TabularFilterNoRows(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"sales.csv": []byte(salesCSV)}}
	a := newAssembler(store)

	sel := classify.Selection{
		Datasets: []catalog.Descriptor{salesDesc},
		Filter:   &classify.Criterion{Field: "Number", Value: 999},
	}
	b := a.Assemble(context.Background(), sel)
	if !strings.Contains(b.Segments[0].Text, placeholderNoRows) {
		t.Errorf("segment = %q, want empty-result notice", b.Segments[0].Text)
	}
}

func TestAssemble_ReadFailureDegrades(t *testing.T) {
	store := &fakeStore{
		objects: map[string][]byte{"sales.csv": []byte(salesCSV)},
		errs:    map[string]error{"policy.txt": errors.New("io failure")},
	}
	a := newAssembler(store)

	sel := classify.Selection{Datasets: []catalog.Descriptor{policyDesc, salesDesc}}
	b := a.Assemble(context.Background(), sel)

	if len(b.Segments) != 2 {
		t.Fatalf("Segments = %d, want 2", len(b.Segments))
	}
	if b.Segments[0].Text != placeholderUnavailable {
		t.Errorf("failed segment = %q, want placeholder", b.Segments[0].Text)
	}
	if !strings.Contains(b.Segments[1].Text, "Number") {
		t.Errorf("healthy segment should still render, got %q", b.Segments[1].Text)
	}
}

func TestAssemble_ParseFailureDegrades(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"sales.csv": []byte("a,b\n1,2,3\n")}}
	a := newAssembler(store)

	b := a.Assemble(context.Background(), classify.Selection{Datasets: []catalog.Descriptor{salesDesc}})
	if b.Segments[0].Text != placeholderUnavailable {
		t.Errorf("segment = %q, want placeholder", b.Segments[0].Text)
	}
}

func TestAssemble_EmptyDocumentGetsPlaceholder(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"policy.txt": []byte("   \n")}}
	a := newAssembler(store)

	b := a.Assemble(context.Background(), classify.Selection{Datasets: []catalog.Descriptor{policyDesc}})
	if b.Segments[0].Text != placeholderUnavailable {
		t.Errorf("segment = %q, want placeholder for blank document", b.Segments[0].Text)
	}
}

func TestAssemble_EmptySelection(t *testing.T) {
	a := newAssembler(&fakeStore{})

	b := a.Assemble(context.Background(), classify.Selection{})
	if len(b.Segments) != 1 {
		t.Fatalf("Segments = %d, want 1", len(b.Segments))
	}
	if b.Segments[0].Source != noCategorySource {
		t.Errorf("Source = %q, want %q", b.Segments[0].Source, noCategorySource)
	}
}

func TestBundle_Render(t *testing.T) {
	b := Bundle{Segments: []Segment{
		{Source: "policy_franchise", Text: "Report weekly."},
		{Source: "metrics_sales", Text: "Number  MonthlySales"},
	}}
	out := b.Render()

	if !strings.Contains(out, "### policy_franchise\nReport weekly.") {
		t.Errorf("Render() missing prefixed first segment:\n%s", out)
	}
	if strings.Index(out, "policy_franchise") > strings.Index(out, "metrics_sales") {
		t.Error("Render() reordered segments")
	}
}
