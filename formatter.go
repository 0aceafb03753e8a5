package main

import (
	"strings"
)

const fence = "```"

// Formatter turns decoded files into Markdown blocks.
type Formatter struct {
	langs *LanguageTable
}

// NewFormatter creates a Formatter using langs, or the built-in table when nil.
func NewFormatter(langs *LanguageTable) *Formatter {
	if langs == nil {
		langs = DefaultLanguageTable()
	}
	return &Formatter{langs: langs}
}

// Block builds the output block for one file.
func (f *Formatter) Block(e FileEntry, doc Document) Block {
	return Block{
		Language: f.langs.TagFor(e.RelPath),
		RelPath:  e.RelPath,
		Checksum: doc.Checksum,
		Content:  doc.Content,
	}
}

// Header returns the heading line naming the file and its checksum.
func (b Block) Header() string {
	if b.Checksum == "" {
		return "# " + b.RelPath
	}
	return "# " + b.RelPath + " (MD5: " + b.Checksum + ")"
}

// AppendTo appends the rendered block to sb. Content is written verbatim,
// including any fence sequences it contains.
func (b Block) AppendTo(sb *strings.Builder) {
	sb.WriteString(b.Header())
	sb.WriteString("\n\n")
	sb.WriteString(fence)
	sb.WriteString(b.Language)
	sb.WriteString("\n")
	sb.WriteString(b.Content)
	if b.Content != "" && !strings.HasSuffix(b.Content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence)
	sb.WriteString("\n\n")
}

// Render returns the block as Markdown.
func (b Block) Render() string {
	var sb strings.Builder
	b.AppendTo(&sb)
	return sb.String()
}
