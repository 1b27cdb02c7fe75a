package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwelldocs/inkwell/core"
)

func TestNewRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}

func pageOfLength(n int) string {
	return strings.Repeat("abcdefghij", n/10) + strings.Repeat("x", n%10)
}

func TestSplitChunkCount(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		size    int
		overlap int
		want    int
	}{
		{"shorter than size", 500, 1000, 200, 1},
		{"exactly size", 1000, 1000, 200, 1},
		{"page and a half", 1500, 1000, 200, 2},
		{"two full steps", 1800, 1000, 200, 2},
		{"three windows", 2700, 1000, 200, 3},
		{"no overlap", 2500, 1000, 0, 3},
		{"tiny windows", 10, 4, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.size, tt.overlap)
			require.NoError(t, err)

			doc := &core.Document{
				Source: "uploads/a.pdf",
				Pages:  []core.Page{{Text: pageOfLength(tt.length), Index: 0}},
			}
			chunks := s.Split(doc)
			assert.Len(t, chunks, tt.want)

			// ceil((L-overlap)/(size-overlap)) for L > size, else 1
			if tt.length > tt.size {
				step := tt.size - tt.overlap
				expected := (tt.length - tt.overlap + step - 1) / step
				assert.Len(t, chunks, expected)
			}
		})
	}
}

func TestSplitWindowOffsets(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	text := pageOfLength(1500)
	doc := &core.Document{
		Source: "uploads/a.pdf",
		Pages:  []core.Page{{Text: text, Index: 0}},
	}

	chunks := s.Split(doc)
	require.Len(t, chunks, 2)

	assert.Equal(t, text[0:1000], chunks[0].Text)
	assert.Equal(t, text[800:1500], chunks[1].Text)
	assert.Equal(t, 0, chunks[0].Overlap)
	assert.Equal(t, 200, chunks[1].Overlap)
}

func TestSplitReconstructsPage(t *testing.T) {
	s, err := New(300, 60)
	require.NoError(t, err)

	text := pageOfLength(1234)
	doc := &core.Document{
		Source: "uploads/a.pdf",
		Pages:  []core.Page{{Text: text, Index: 0}},
	}

	chunks := s.Split(doc)
	require.NotEmpty(t, chunks)

	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Text[c.Overlap:])
	}
	assert.Equal(t, text, sb.String())
}

func TestSplitProvenance(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	doc := &core.Document{
		Source: "uploads/report.pdf",
		Pages: []core.Page{
			{Text: pageOfLength(250), Index: 0},
			{Text: pageOfLength(90), Index: 1},
			{Text: "", Index: 2},
			{Text: pageOfLength(101), Index: 3},
		},
	}

	chunks := s.Split(doc)

	// Page 0: ceil(230/80)=3, page 1: 1, page 2: none, page 3: ceil(81/80)=2
	require.Len(t, chunks, 6)

	byPage := map[int]int{}
	for _, c := range chunks {
		assert.Equal(t, "uploads/report.pdf", c.Source)
		assert.LessOrEqual(t, len(c.Text), 100)
		byPage[c.PageIndex]++
	}
	assert.Equal(t, map[int]int{0: 3, 1: 1, 3: 2}, byPage)

	// Chunk indices restart per page.
	for _, c := range chunks {
		if c.ChunkIndex == 0 {
			assert.Equal(t, 0, c.Overlap)
		} else {
			assert.Equal(t, 20, c.Overlap)
		}
	}
}

func TestSplitMultiByteText(t *testing.T) {
	s, err := New(10, 2)
	require.NoError(t, err)

	// 8 ideographs fit a single 10-rune window; the chunk must carry
	// whole characters, not a byte prefix.
	short := strings.Repeat("日", 8)
	chunks := s.Split(&core.Document{
		Source: "uploads/a.pdf",
		Pages:  []core.Page{{Text: short, Index: 0}},
	})
	require.Len(t, chunks, 1)
	assert.Equal(t, short, chunks[0].Text)
	assert.True(t, utf8.ValidString(chunks[0].Text))

	s, err = New(5, 2)
	require.NoError(t, err)

	long := "héllo wörld 日本語テキスト"
	runes := []rune(long)
	chunks = s.Split(&core.Document{
		Source: "uploads/a.pdf",
		Pages:  []core.Page{{Text: long, Index: 0}},
	})
	require.NotEmpty(t, chunks)

	// Windows are rune offsets, so every boundary is a character boundary.
	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c.Text), "chunk %d", i)
		assert.LessOrEqual(t, len([]rune(c.Text)), 5, "chunk %d", i)
	}
	assert.Equal(t, string(runes[0:5]), chunks[0].Text)
	assert.Equal(t, string(runes[3:8]), chunks[1].Text)

	// Trimming each chunk's overlap runes reassembles the page exactly.
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(string([]rune(c.Text)[c.Overlap:]))
	}
	assert.Equal(t, long, sb.String())
}

func TestSplitDeterministic(t *testing.T) {
	s, err := New(128, 32)
	require.NoError(t, err)

	doc := &core.Document{
		Source: "uploads/a.pdf",
		Pages:  []core.Page{{Text: pageOfLength(1000), Index: 0}},
	}

	first := s.Split(doc)
	second := s.Split(doc)
	assert.Equal(t, first, second)
}

func TestSplitNilAndEmpty(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	assert.Nil(t, s.Split(nil))
	assert.Empty(t, s.Split(&core.Document{Source: "x"}))
}
