package blame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	commitA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	commitB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestParseFile_EmptyTrace(t *testing.T) {
	t.Parallel()

	blocks, err := ParseFile(nil)

	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestParseFile_SingleBlock(t *testing.T) {
	t.Parallel()

	trace := []string{
		commitA + " 1 1 2",
		"author Alice",
		"author-mail <alice@example.com>",
		"author-time 1700000000",
		"summary Add parser",
		"\tpackage main",
		commitA + " 2 2",
		"\tfunc main() {}",
	}

	blocks, err := ParseFile(trace)

	require.NoError(t, err)
	require.Len(t, blocks, 1)

	block := blocks[0]
	assert.Equal(t, commitA, block.CommitID)
	assert.Equal(t, 2, block.GroupLength)
	require.Len(t, block.Lines, 2)
	assert.Equal(t, LineEntry{Number: 1, Text: "package main"}, block.Lines[0])
	assert.Equal(t, LineEntry{Number: 2, Text: "func main() {}"}, block.Lines[1])
	assert.Equal(t, "Alice", block.Meta.Author())
	assert.Equal(t, "<alice@example.com>", block.Meta.AuthorMail())
	assert.Equal(t, int64(1700000000), block.Meta.AuthorTime())
	assert.Equal(t, "Add parser", block.Meta.Summary())
}

func TestParseFile_CoversEveryLineExactlyOnce(t *testing.T) {
	t.Parallel()

	trace := []string{
		commitA + " 1 1 2",
		"author Alice",
		"summary first",
		"\tone",
		commitA + " 2 2",
		"\ttwo",
		commitB + " 3 3 3",
		"author Bob",
		"summary second",
		"\tthree",
		commitB + " 4 4",
		"\tfour",
		commitB + " 5 5",
		"\tfive",
	}

	blocks, err := ParseFile(trace)

	require.NoError(t, err)
	require.Len(t, blocks, 2)

	// Concatenated lines cover 1..5 strictly increasing, no gaps.
	wantNumber := 1

	for _, block := range blocks {
		for _, line := range block.Lines {
			assert.Equal(t, wantNumber, line.Number)
			wantNumber++
		}
	}

	assert.Equal(t, 6, wantNumber)
}

func TestParseFile_MetadataMemoOnReappearance(t *testing.T) {
	t.Parallel()

	// Commit A appears, commit B interrupts, commit A reappears with no
	// metadata: the memoized metadata must resolve the second appearance.
	trace := []string{
		commitA + " 1 1 1",
		"author Alice",
		"author-mail <alice@example.com>",
		"summary original",
		"\tone",
		commitB + " 2 2 1",
		"author Bob",
		"summary interloper",
		"\ttwo",
		commitA + " 3 3 1",
		"\tthree",
	}

	blocks, err := ParseFile(trace)

	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, commitA, blocks[2].CommitID)
	assert.Equal(t, blocks[0].Meta, blocks[2].Meta)
	assert.Equal(t, "original", blocks[2].Meta.Summary())
}

func TestParseFile_MissingMemoIsFatal(t *testing.T) {
	t.Parallel()

	// Commit B never carried metadata anywhere in the trace.
	trace := []string{
		commitA + " 1 1 1",
		"author Alice",
		"summary first",
		"\tone",
		commitB + " 2 2 1",
		"\ttwo",
	}

	_, err := ParseFile(trace)

	require.ErrorIs(t, err, ErrMissingMetadata)
}

func TestParseFile_UnrecognizedLineIsFatal(t *testing.T) {
	t.Parallel()

	trace := []string{
		commitA + " 1 1 1",
		"author Alice",
		"summary first",
		"NOT A VALID LINE",
		"\tone",
	}

	_, err := ParseFile(trace)

	require.ErrorIs(t, err, ErrUnrecognizedLine)
}

func TestParseFile_CodeLineBeforeHeaderIsFatal(t *testing.T) {
	t.Parallel()

	_, err := ParseFile([]string{"\torphan line"})

	require.ErrorIs(t, err, ErrUnrecognizedLine)
}

func TestParseFile_MetadataBeforeHeaderIsFatal(t *testing.T) {
	t.Parallel()

	_, err := ParseFile([]string{"author Alice"})

	require.ErrorIs(t, err, ErrUnrecognizedLine)
}

func TestParseFile_HeaderWithoutCodeLineIsTruncated(t *testing.T) {
	t.Parallel()

	trace := []string{
		commitA + " 1 1 2",
		"author Alice",
		"summary first",
		"\tone",
		commitA + " 2 2",
	}

	_, err := ParseFile(trace)

	require.ErrorIs(t, err, ErrTruncatedTrace)
}

func TestParseFile_FinalHunkShorterThanDeclaredIsTruncated(t *testing.T) {
	t.Parallel()

	trace := []string{
		commitA + " 1 1 3",
		"author Alice",
		"summary first",
		"\tone",
		commitA + " 2 2",
		"\ttwo",
	}

	_, err := ParseFile(trace)

	require.ErrorIs(t, err, ErrTruncatedTrace)
}

func TestParseFile_LateGroupLengthIsAdopted(t *testing.T) {
	t.Parallel()

	// The first header omits the group length; a continuation header
	// declares it. The block adopts it without starting a new block.
	trace := []string{
		commitA + " 1 1",
		"author Alice",
		"summary first",
		"\tone",
		commitA + " 2 2 2",
		"\ttwo",
	}

	blocks, err := ParseFile(trace)

	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 2, blocks[0].GroupLength)
	assert.Len(t, blocks[0].Lines, 2)
}

func TestParseFile_ValuelessAndUnknownFieldsPassThrough(t *testing.T) {
	t.Parallel()

	trace := []string{
		commitA + " 1 1 1",
		"author Alice",
		"summary first",
		"boundary",
		"previous " + commitB + " main.go",
		"custom-field some opaque value",
		"\tone",
	}

	blocks, err := ParseFile(trace)

	require.NoError(t, err)
	require.Len(t, blocks, 1)

	meta := blocks[0].Meta
	assert.Equal(t, "", meta["boundary"])
	assert.Equal(t, commitB+" main.go", meta["previous"])
	assert.Equal(t, "some opaque value", meta["custom-field"])
}

func TestParseFile_EmptyCodeLine(t *testing.T) {
	t.Parallel()

	trace := []string{
		commitA + " 1 1 1",
		"author Alice",
		"summary first",
		"\t",
	}

	blocks, err := ParseFile(trace)

	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, LineEntry{Number: 1, Text: ""}, blocks[0].Lines[0])
}

func TestCommitMetadata_AuthorTimeMalformed(t *testing.T) {
	t.Parallel()

	meta := CommitMetadata{FieldAuthorTime: "not-a-number"}

	assert.Equal(t, int64(0), meta.AuthorTime())
}

func TestParseHeader_RejectsShortHexTokens(t *testing.T) {
	t.Parallel()

	// "added 1 2" looks header-shaped but the token is too short to be a
	// commit identifier; it must fall through to the metadata grammar.
	_, ok := parseHeader("added 1 2")

	assert.False(t, ok)
}
