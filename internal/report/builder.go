package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/crawlmd/crawlmd/internal/model"
	"github.com/crawlmd/crawlmd/internal/sanitize"
)

// Builder assembles the report document section by section.
//
// Append must only be called for Success-classified results, in the
// iteration order of the engine's result list. The document is append-only
// during construction and immutable once finalized. Builder is owned by a
// single orchestrator invocation and is not safe for concurrent use.
type Builder struct {
	md       *markdown.Markdown
	sections int

	// now supplies section timestamps; injectable for tests.
	now func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock sets the clock used for section timestamps.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates an empty report Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		md:  markdown.NewMarkdown(io.Discard),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Append renders one section for a successful page result: a heading with
// the sanitized URL, a metadata block with depth and a render-time
// timestamp, the sanitized content, and a trailing separator.
//
// The timestamp is taken at render time, not fetch time: it records when
// the report entry was produced.
func (b *Builder) Append(r model.PageResult) {
	depth := "N/A"
	if r.Depth != model.UnknownDepth {
		depth = strconv.Itoa(r.Depth)
	}

	b.md.H1(sanitize.Text(r.URL))
	b.md.H2("Metadata")
	b.md.BulletList(
		"Depth: "+sanitize.Text(depth),
		"Timestamp: "+sanitize.Text(b.now().Format(time.RFC3339)),
	)
	b.md.H2("Content")
	b.md.PlainText(sanitize.Text(r.Content()))
	b.md.HorizontalRule()

	b.sections++
}

// Len returns the number of appended sections.
func (b *Builder) Len() int {
	return b.sections
}

// Finalize returns the document with all sections in append order.
// It is idempotent: repeated calls return the same string as long as no
// further sections are appended.
func (b *Builder) Finalize() string {
	return b.md.String()
}
