package catalog

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	r, err := New(
		Descriptor{Name: "policy", StoreKey: "policy.txt", Kind: KindText},
		Descriptor{Name: "sales", StoreKey: "sales.csv", Kind: KindTabular},
	)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	d, err := r.Resolve("sales")
	if err != nil {
		t.Fatalf("Resolve(sales) = %v", err)
	}
	if d.StoreKey != "sales.csv" || d.Kind != KindTabular {
		t.Errorf("Resolve(sales) = %+v, want sales.csv tabular", d)
	}
}

func TestResolve_Unknown(t *testing.T) {
	r, err := New(Descriptor{Name: "policy", StoreKey: "policy.txt", Kind: KindText})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	_, err = r.Resolve("nope")
	if !errors.Is(err, ErrUnknownDataset) {
		t.Fatalf("Resolve(nope) = %v, want ErrUnknownDataset", err)
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		descriptors []Descriptor
	}{
		{
			name: "duplicate name",
			descriptors: []Descriptor{
				{Name: "a", StoreKey: "a.txt", Kind: KindText},
				{Name: "a", StoreKey: "b.txt", Kind: KindText},
			},
		},
		{
			name:        "empty name",
			descriptors: []Descriptor{{StoreKey: "a.txt", Kind: KindText}},
		},
		{
			name:        "unknown kind",
			descriptors: []Descriptor{{Name: "a", StoreKey: "a.bin", Kind: "binary"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.descriptors...); err == nil {
				t.Error("New() = nil error, want error")
			}
		})
	}
}

func TestAll_PreservesDeclarationOrder(t *testing.T) {
	r, err := New(
		Descriptor{Name: "c", StoreKey: "c.txt", Kind: KindText},
		Descriptor{Name: "a", StoreKey: "a.txt", Kind: KindText},
		Descriptor{Name: "b", StoreKey: "b.txt", Kind: KindText},
	)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	got := r.All()
	want := []string{"c", "a", "b"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("All()[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	r, err := New(Descriptor{Name: "a", StoreKey: "a.txt", Kind: KindText})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	r.All()[0].Name = "mutated"
	if d, _ := r.Resolve("a"); d.Name != "a" {
		t.Error("mutating All() result leaked into registry state")
	}
}

func TestDefault(t *testing.T) {
	r := Default()
	if r.Len() != 4 {
		t.Fatalf("Default().Len() = %d, want 4", r.Len())
	}
	if _, err := r.Resolve("policy_franchise"); err != nil {
		t.Errorf("Resolve(policy_franchise) = %v", err)
	}
	if d, _ := r.Resolve("metrics_sales"); d.Kind != KindTabular || len(d.Columns) == 0 {
		t.Errorf("metrics_sales = %+v, want tabular with projected columns", d)
	}
}
