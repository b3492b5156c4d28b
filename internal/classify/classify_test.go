package classify

import (
	"testing"

	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	r, err := catalog.New(
		catalog.Descriptor{
			Name: "policy_franchise", StoreKey: "policy.txt", Kind: catalog.KindText,
			Keywords: []string{"franchise", "policy"},
		},
		catalog.Descriptor{
			Name: "metrics_sales", StoreKey: "sales.csv", Kind: catalog.KindTabular,
			Keywords: []string{"sales", "franchise"},
		},
		catalog.Descriptor{
			Name: "metrics_stores", StoreKey: "stores.csv", Kind: catalog.KindTabular,
			Keywords: []string{"store"},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New() = %v", err)
	}
	return r
}

func datasetNames(sel Selection) []string {
	names := make([]string, len(sel.Datasets))
	for i, d := range sel.Datasets {
		names[i] = d.Name
	}
	return names
}

func TestClassify_NoKeyword(t *testing.T) {
	c := New(testRegistry(t), log.NewNop())

	sel := c.Classify("What is the meaning of life?")
	if len(sel.Datasets) != 0 {
		t.Errorf("Datasets = %v, want empty", datasetNames(sel))
	}
	if sel.Filter != nil {
		t.Errorf("Filter = %+v, want nil", sel.Filter)
	}
}

func TestClassify_SingleGroup(t *testing.T) {
	c := New(testRegistry(t), log.NewNop())

	sel := c.Classify("What are the franchise reporting rules?")
	got := datasetNames(sel)
	// "franchise" appears in two keyword groups; both match, registry order.
	want := []string{"policy_franchise", "metrics_sales"}
	if len(got) != len(want) {
		t.Fatalf("Datasets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Datasets[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if sel.Filter != nil {
		t.Errorf("Filter = %+v, want nil", sel.Filter)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := New(testRegistry(t), log.NewNop())

	sel := c.Classify("SHOW ME StOrE numbers")
	got := datasetNames(sel)
	if len(got) != 1 || got[0] != "metrics_stores" {
		t.Errorf("Datasets = %v, want [metrics_stores]", got)
	}
}

func TestClassify_MultipleGroupsRegistryOrder(t *testing.T) {
	c := New(testRegistry(t), log.NewNop())

	// Mention order in the question must not affect dataset order.
	sel := c.Classify("Compare store performance with sales policy")
	got := datasetNames(sel)
	want := []string{"policy_franchise", "metrics_sales", "metrics_stores"}
	if len(got) != len(want) {
		t.Fatalf("Datasets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Datasets[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractFilter(t *testing.T) {
	tests := []struct {
		text string
		want int  // -1 means no filter expected
	}{
		{"How is Franchise 42 doing?", 42},
		{"how is franchise 42 doing", 42},
		{"FRANCHISE 42", 42},
		{"franchise #7 sales", 7},
		{"franchise 12 and franchise 99", 12}, // first match wins
		{"our franchisees are great", -1},
		{"franchise forty-two", -1},
		{"no entity here", -1},
	}

	for _, tt := range tests {
		got := extractFilter(tt.text)
		if tt.want == -1 {
			if got != nil {
				t.Errorf("extractFilter(%q) = %+v, want nil", tt.text, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("extractFilter(%q) = nil, want %d", tt.text, tt.want)
			continue
		}
		if got.Value != tt.want || got.Field != FilterField {
			t.Errorf("extractFilter(%q) = %+v, want {%s %d}", tt.text, got, FilterField, tt.want)
		}
	}
}

func TestClassify_FilterAndDatasets(t *testing.T) {
	c := New(testRegistry(t), log.NewNop())

	sel := c.Classify("What were the sales for Franchise 42 last month?")
	if sel.Filter == nil || sel.Filter.Value != 42 {
		t.Fatalf("Filter = %+v, want value 42", sel.Filter)
	}
	got := datasetNames(sel)
	want := []string{"policy_franchise", "metrics_sales"}
	if len(got) != len(want) {
		t.Fatalf("Datasets = %v, want %v", got, want)
	}
}
