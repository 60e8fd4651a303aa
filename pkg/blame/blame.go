// Package blame parses git blame porcelain traces into typed attribution
// blocks. The parser is a streaming state machine: one pending block
// accumulator, no backtracking, and a per-parse metadata memo that resolves
// repeat appearances of a commit whose metadata the trace omits.
package blame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for trace parsing.
var (
	// ErrUnrecognizedLine indicates a trace line matching none of the
	// recognized grammars (hunk header, metadata, code line).
	ErrUnrecognizedLine = errors.New("unrecognized trace line")
	// ErrMissingMetadata indicates a commit reappeared with empty metadata
	// before its metadata was ever recorded in this file's trace.
	ErrMissingMetadata = errors.New("commit metadata never recorded")
	// ErrTruncatedTrace indicates the trace ended inside an unfinished hunk.
	ErrTruncatedTrace = errors.New("truncated trace")
)

// Well-known porcelain metadata field names.
const (
	FieldAuthor     = "author"
	FieldAuthorMail = "author-mail"
	FieldAuthorTime = "author-time"
	FieldSummary    = "summary"
)

// LineEntry is one source line and its 1-based position in the file.
type LineEntry struct {
	Number int
	Text   string
}

// CommitMetadata maps porcelain field names to their string values.
// Any field the trace supplies is retained; unknown fields pass through.
type CommitMetadata map[string]string

// Author returns the commit author name.
func (m CommitMetadata) Author() string {
	return m[FieldAuthor]
}

// AuthorMail returns the raw author mail field, including the angle-bracket
// wrapper the porcelain format uses (e.g. "<dev@example.com>").
func (m CommitMetadata) AuthorMail() string {
	return m[FieldAuthorMail]
}

// AuthorTime returns the author timestamp as a Unix epoch, or 0 when the
// field is missing or malformed.
func (m CommitMetadata) AuthorTime() int64 {
	epoch, err := strconv.ParseInt(m[FieldAuthorTime], 10, 64)
	if err != nil {
		return 0
	}

	return epoch
}

// Summary returns the first line of the commit message.
func (m CommitMetadata) Summary() string {
	return m[FieldSummary]
}

// Block is a contiguous group of lines attributed to one commit.
type Block struct {
	CommitID    string
	GroupLength int
	Lines       []LineEntry
	Meta        CommitMetadata
}

// ParseFile converts one file's ordered trace lines into ordered blocks.
// An empty trace yields zero blocks. Any line that matches none of the
// recognized grammars fails the whole parse.
func ParseFile(traceLines []string) ([]Block, error) {
	p := &parser{memo: make(map[string]CommitMetadata)}

	for i, raw := range traceLines {
		err := p.consume(raw)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", i+1, err)
		}
	}

	return p.finish()
}

// parser holds the streaming parse state for one file's trace.
type parser struct {
	blocks    []Block
	current   *Block
	pending   CommitMetadata
	nextLine  int
	awaitCode bool
	memo      map[string]CommitMetadata
}

func (p *parser) consume(raw string) error {
	if strings.HasPrefix(raw, "\t") {
		return p.consumeCode(raw[1:])
	}

	header, ok := parseHeader(raw)
	if ok {
		return p.consumeHeader(header)
	}

	field, value, ok := parseMetadata(raw)
	if ok {
		return p.consumeMetadata(field, value)
	}

	return fmt.Errorf("%w: %q", ErrUnrecognizedLine, raw)
}

// hunkHeader is the parsed form of `<commitId> <origLine> <finalLine>
// [<groupLength>]`. GroupLength is zero on continuation headers.
type hunkHeader struct {
	commitID    string
	finalLine   int
	groupLength int
}

const (
	headerMinFields = 3
	headerMaxFields = 4
)

// parseHeader recognizes the hunk header grammar. The commit identifier is
// whatever hex token the trace uses; line numbers must be positive integers.
func parseHeader(raw string) (hunkHeader, bool) {
	fields := strings.Fields(raw)
	if len(fields) < headerMinFields || len(fields) > headerMaxFields {
		return hunkHeader{}, false
	}

	if !isCommitID(fields[0]) {
		return hunkHeader{}, false
	}

	origLine, err := strconv.Atoi(fields[1])
	if err != nil || origLine < 1 {
		return hunkHeader{}, false
	}

	finalLine, err := strconv.Atoi(fields[2])
	if err != nil || finalLine < 1 {
		return hunkHeader{}, false
	}

	header := hunkHeader{commitID: fields[0], finalLine: finalLine}

	if len(fields) == headerMaxFields {
		groupLength, lengthErr := strconv.Atoi(fields[3])
		if lengthErr != nil || groupLength < 1 {
			return hunkHeader{}, false
		}

		header.groupLength = groupLength
	}

	return header, true
}

// minCommitIDLen rejects short hex words ("add", "fee") that are far more
// likely to be metadata field names than abbreviated commit identifiers.
const minCommitIDLen = 8

func isCommitID(token string) bool {
	if len(token) < minCommitIDLen {
		return false
	}

	for _, c := range token {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isHex {
			return false
		}
	}

	return true
}

// parseMetadata recognizes `<field-name> [<value>]` where the field name is
// a lower-case-hyphen token. Fields without a value (e.g. "boundary") map to
// the empty string.
func parseMetadata(raw string) (field, value string, ok bool) {
	field, value, _ = strings.Cut(raw, " ")
	if !isFieldName(field) {
		return "", "", false
	}

	return field, value, true
}

func isFieldName(token string) bool {
	if token == "" {
		return false
	}

	if token[0] < 'a' || token[0] > 'z' {
		return false
	}

	for i := 1; i < len(token); i++ {
		c := token[i]

		isWord := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-'
		if !isWord {
			return false
		}
	}

	return true
}

// consumeHeader applies the block-boundary rule: a header starts a new block
// when it is the first header seen, or when it declares a group length while
// the current block already has one. Every other header continues the
// current block and only moves the line cursor.
func (p *parser) consumeHeader(header hunkHeader) error {
	switch {
	case p.current == nil:
		p.startBlock(header)
	case header.groupLength > 0 && p.current.GroupLength > 0:
		err := p.completeBlock()
		if err != nil {
			return err
		}

		p.startBlock(header)
	default:
		// Continuation. A late group-length declaration is adopted;
		// boundaries never move because of it.
		if header.groupLength > 0 {
			p.current.GroupLength = header.groupLength
		}
	}

	p.nextLine = header.finalLine
	p.awaitCode = true

	return nil
}

func (p *parser) startBlock(header hunkHeader) {
	p.current = &Block{
		CommitID:    header.commitID,
		GroupLength: header.groupLength,
	}
	p.pending = make(CommitMetadata)
}

func (p *parser) consumeMetadata(field, value string) error {
	if p.current == nil {
		return fmt.Errorf("%w: metadata %q before any hunk header", ErrUnrecognizedLine, field)
	}

	p.pending[field] = value

	return nil
}

func (p *parser) consumeCode(text string) error {
	if p.current == nil {
		return fmt.Errorf("%w: code line before any hunk header", ErrUnrecognizedLine)
	}

	p.current.Lines = append(p.current.Lines, LineEntry{Number: p.nextLine, Text: text})
	p.awaitCode = false

	return nil
}

// completeBlock resolves the finished block's metadata against the memo and
// appends it to the output. Metadata recorded once is reused verbatim for
// every later appearance of the same commit in this file.
func (p *parser) completeBlock() error {
	if len(p.pending) > 0 {
		p.memo[p.current.CommitID] = p.pending
	}

	meta, ok := p.memo[p.current.CommitID]
	if !ok {
		return fmt.Errorf("%w: commit %s", ErrMissingMetadata, p.current.CommitID)
	}

	p.current.Meta = meta
	p.blocks = append(p.blocks, *p.current)
	p.current = nil
	p.pending = nil

	return nil
}

func (p *parser) finish() ([]Block, error) {
	if p.awaitCode {
		return nil, fmt.Errorf("%w: hunk header without its code line", ErrTruncatedTrace)
	}

	if p.current != nil {
		if p.current.GroupLength > len(p.current.Lines) {
			return nil, fmt.Errorf("%w: final hunk declares %d lines, got %d",
				ErrTruncatedTrace, p.current.GroupLength, len(p.current.Lines))
		}

		err := p.completeBlock()
		if err != nil {
			return nil, err
		}
	}

	return p.blocks, nil
}
