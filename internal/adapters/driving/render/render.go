// Package render formats answer records for terminals, markdown and HTML.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// Section headings shared by every output format.
const (
	HeadingAnswer    = "### Answer:"
	HeadingTables    = "### Referenced Tables:"
	HeadingImages    = "### Referenced Images:"
	HeadingDocuments = "### Retrieved Documents:"

	noTables    = "_No tables referenced._"
	noImages    = "_No images referenced._"
	noDocuments = "_No documents retrieved._"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the full record as markdown. Images are listed by
// reference with their decoded size; the payloads themselves are omitted.
func Markdown(rec domain.AnswerRecord) string {
	var b strings.Builder
	b.WriteString(HeadingAnswer + "\n\n")
	b.WriteString(rec.AnswerText)
	b.WriteString("\n\n")
	b.WriteString(Tables(rec.Tables))
	b.WriteString("\n")
	b.WriteString(Images(rec.Images))
	b.WriteString("\n")
	b.WriteString(Documents(rec.RetrievedChunks))
	return b.String()
}

// Tables renders the referenced tables section.
func Tables(tables map[string]string) string {
	var b strings.Builder
	b.WriteString(HeadingTables + "\n\n")
	if len(tables) == 0 {
		b.WriteString(noTables + "\n")
		return b.String()
	}
	for _, ref := range SortedRefs(tables) {
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n", ref, tables[ref])
	}
	return b.String()
}

// Images renders the referenced images section.
func Images(images map[string]string) string {
	var b strings.Builder
	b.WriteString(HeadingImages + "\n\n")
	if len(images) == 0 {
		b.WriteString(noImages + "\n")
		return b.String()
	}
	for _, ref := range SortedRefs(images) {
		fmt.Fprintf(&b, "- **%s** (%s)\n", ref, sizeLabel(images[ref]))
	}
	return b.String()
}

// Documents renders the retrieved chunks as numbered documents.
func Documents(chunks []domain.Chunk) string {
	var b strings.Builder
	b.WriteString(HeadingDocuments + "\n\n")
	if len(chunks) == 0 {
		b.WriteString(noDocuments + "\n")
		return b.String()
	}
	for i, c := range chunks {
		fmt.Fprintf(&b, "**Doc %d:**\n%s\n\n", i+1, c.Content)
	}
	return b.String()
}

// HTML renders the record's markdown as an HTML fragment.
func HTML(rec domain.AnswerRecord) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(rec)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// SortedRefs returns the keys of m in ascending order.
func SortedRefs(m map[string]string) []string {
	refs := make([]string, 0, len(m))
	for ref := range m {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}

// ImageSize returns the decoded size of a base64 payload, or 0 if it does not decode.
func ImageSize(payload string) int {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0
	}
	return len(data)
}

func sizeLabel(payload string) string {
	return humanize.Bytes(uint64(ImageSize(payload)))
}
