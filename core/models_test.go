package core

import (
	"math"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "cyrillic content", content: "Вклад «Лучший %»\nСтавка до 20% годовых"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestRole_Tags(t *testing.T) {
	tests := []struct {
		role Role
		tag  string
	}{
		{RoleHuman, "human"},
		{RoleAI, "ai"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := tt.role.Tag(); got != tt.tag {
				t.Errorf("Tag() = %q, want %q", got, tt.tag)
			}
			role, ok := RoleFromTag(tt.tag)
			if !ok || role != tt.role {
				t.Errorf("RoleFromTag(%q) = %v, %v", tt.tag, role, ok)
			}
		})
	}

	t.Run("unknown tag", func(t *testing.T) {
		if _, ok := RoleFromTag("system"); ok {
			t.Error("RoleFromTag should reject unknown tags")
		}
		if got := Role(9).String(); got != "unknown" {
			t.Errorf("String() = %q, want unknown", got)
		}
	})
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
			t.Errorf("NormalizeVector() = %v", v)
		}
	})

	t.Run("zero vector", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		for _, x := range v {
			if x != 0 {
				t.Errorf("expected zero vector, got %v", v)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		if v := NormalizeVector(nil); len(v) != 0 {
			t.Errorf("expected empty vector, got %v", v)
		}
	})
}

func TestDotProduct(t *testing.T) {
	if got := DotProduct([]float32{1, 2, 3}, []float32{4, 5, 6}); got != 32 {
		t.Errorf("DotProduct() = %v, want 32", got)
	}
	if got := DotProduct([]float32{1, 2}, []float32{1}); got != 1 {
		t.Errorf("DotProduct() with mismatched lengths = %v, want 1", got)
	}
}
