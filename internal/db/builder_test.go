package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx, err := NewIndex("test-idx").
		Prefix("product:").
		Tag("model").
		Text("category").
		Numeric("power_watts").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if len(idx.Prefixes) != 1 || idx.Prefixes[0] != "product:" {
		t.Errorf("prefixes = %v, want [product:]", idx.Prefixes)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Name != "model" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want model TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "category" || idx.Fields[1].Type != IndexFieldText {
		t.Errorf("field[1] = %+v, want category TEXT", idx.Fields[1])
	}
	if idx.Fields[2].Name != "power_watts" || idx.Fields[2].Type != IndexFieldNumeric {
		t.Errorf("field[2] = %+v, want power_watts NUMERIC", idx.Fields[2])
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx, err := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Tag("x").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_NoFields(t *testing.T) {
	_, err := NewIndex("empty-idx").Prefix("p:").Build()
	if err == nil {
		t.Fatal("expected error for index without fields")
	}
	if !strings.Contains(err.Error(), "at least one field") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIndexBuilder_DuplicateField(t *testing.T) {
	_, err := NewIndex("dup-idx").
		Prefix("p:").
		Tag("model").
		Text("model").
		Build()
	if err == nil {
		t.Fatal("expected error for duplicate field name")
	}
	if !strings.Contains(err.Error(), "duplicate field name") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIndexBuilder_InvalidName(t *testing.T) {
	_, err := NewIndex("bad name!").Prefix("p:").Tag("x").Build()
	if err == nil {
		t.Fatal("expected error for invalid index name")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"catalogqa:product_idx", true},
		{"abc-123", true},
		{"", false},
		{"has space", false},
		{"inject)", false},
	}

	for _, tt := range tests {
		if got := IsValidIdentifier(tt.in); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
