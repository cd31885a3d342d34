package glossary

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/glossmd/internal/apperr"
	"codeberg.org/snonux/glossmd/internal/testutil"
)

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	testutil.CreateTestFile(t, path, []byte(`[
  {"source": "AI", "target": "인공지능"},
  {"source": "model", "target": ["모델", "모형"]}
]`))

	entries, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Source: "AI", Target: Targets{"인공지능"}},
		{Source: "model", Target: Targets{"모델", "모형"}},
	}, entries)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	testutil.CreateTestFile(t, path, []byte(`- source: pipeline
  target: 파이프라인
- source: token
  target:
    - 토큰
    - 토큰값
`))

	entries, err := Load(path)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, Targets{"파이프라인"}, entries[0].Target)
	assert.Equal(t, Targets{"토큰", "토큰값"}, entries[1].Target)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
	}{
		{"malformed json", `[{"source": "AI",`, apperr.ErrParse},
		{"target wrong type", `[{"source": "AI", "target": 3}]`, apperr.ErrParse},
		{"empty source", `[{"source": "  ", "target": "x"}]`, apperr.ErrParse},
		{"duplicate source", `[{"source": "AI", "target": "a"}, {"source": "AI", "target": "b"}]`, apperr.ErrParse},
		{"empty target list", `[{"source": "AI", "target": []}]`, apperr.ErrParse},
		{"blank targets only", `[{"source": "AI", "target": ["", " "]}]`, apperr.ErrParse},
		{"missing target", `[{"source": "AI"}]`, apperr.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "glossary.json")
			testutil.CreateTestFile(t, path, []byte(tt.content))

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))

	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
	assert.Contains(t, nf.Path, "nope.json")
}

func TestNormalize_TrimsAndKeepsOrder(t *testing.T) {
	entries, err := Normalize([]Entry{
		{Source: " model ", Target: Targets{" 모델", "", "모형 "}},
	})
	require.NoError(t, err)

	assert.Equal(t, "model", entries[0].Source)
	assert.Equal(t, Targets{"모델", "모형"}, entries[0].Target)
}

func TestTerms(t *testing.T) {
	entries := []Entry{
		{Source: "AI", Target: Targets{"인공지능"}},
		{Source: "model", Target: Targets{"모델", "모형"}},
	}

	assert.Equal(t, []string{"AI", "model"}, SourceTerms(entries))
	assert.Equal(t, []string{"인공지능", "모델", "모형"}, TargetTerms(entries))
	assert.Empty(t, TargetTerms(nil))
}
