package catalog

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"mixed case and blanks", "React, Node.js , , TypeScript", []string{"react", "node.js", "typescript"}},
		{"empty input", "", []string{}},
		{"only separators", " , ,, ", []string{}},
		{"duplicates kept", "Go, go ,GO", []string{"go", "go", "go"}},
		{"inner spaces kept", "  Spring Boot ,github actions", []string{"spring boot", "github actions"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestClassify(t *testing.T) {
	c := Default()

	t.Run("keeps unrecognized tags", func(t *testing.T) {
		normalized, unrecognized := c.Classify("Go, Elixir, Rust, cobol")
		assert.Equal(t, []string{"go", "elixir", "rust", "cobol"}, normalized)
		assert.Equal(t, []string{"elixir", "cobol"}, unrecognized)
	})

	t.Run("all recognized", func(t *testing.T) {
		normalized, unrecognized := c.Classify("docker,kubernetes")
		assert.Equal(t, []string{"docker", "kubernetes"}, normalized)
		assert.Empty(t, unrecognized)
	})
}

func TestList(t *testing.T) {
	c := Default()
	list := c.List()

	assert.True(t, sort.StringsAreSorted(list))
	assert.Equal(t, len(knownTechnologies), c.Len())
	assert.Len(t, list, c.Len())
	assert.Contains(t, list, "next.js")

	// callers cannot mutate the catalog through the returned slice
	list[0] = "zzz"
	assert.NotEqual(t, "zzz", c.List()[0])
}

func TestNewDeduplicatesAndFolds(t *testing.T) {
	c := New("Go", "go", " Rust ", "")
	assert.Equal(t, []string{"go", "rust"}, c.List())
	assert.True(t, c.Contains("rust"))
	assert.False(t, c.Contains("Rust"))
}
