package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":        "hello-world",
		"  Breaking   News  ":  "breaking-news",
		"Café au Lait":         "cafe-au-lait",
		"Go 1.24 Released":     "go-1-24-released",
		"---":                  "",
		"UPPER_case mixed-Sep": "upper-case-mixed-sep",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestPaginationClamping(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 500, 45)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 200, p.Offset())
}
