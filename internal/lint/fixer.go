package lint

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/meteor3lint/internal/model"
)

// InsertTextBefore returns a fix inserting text immediately before n.
func InsertTextBefore(n *sitter.Node, text string) *model.Fix {
	return InsertTextBeforeOffset(n.StartByte(), text)
}

// InsertTextBeforeOffset returns a fix inserting text at a byte offset.
func InsertTextBeforeOffset(offset uint32, text string) *model.Fix {
	return &model.Fix{Start: offset, End: offset, Text: text}
}

// ReplaceText returns a fix replacing the source of n with text.
func ReplaceText(n *sitter.Node, text string) *model.Fix {
	return &model.Fix{Start: n.StartByte(), End: n.EndByte(), Text: text}
}
