package diagfmt

import (
	"bytes"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"ember/internal/diag"
	"ember/internal/source"
)

// fixEditPreview holds the whole lines an edit touches, before and after.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.FixEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	if edit.Span.End < edit.Span.Start || edit.Span.End > size {
		return fixEditPreview{}, fmt.Errorf("edit span %d..%d out of range", edit.Span.Start, edit.Span.End)
	}

	content := file.Content
	from := bytes.LastIndexByte(content[:edit.Span.Start], '\n') + 1
	to := len(content)
	if nl := bytes.IndexByte(content[edit.Span.End:], '\n'); nl >= 0 {
		to = int(edit.Span.End) + nl + 1
	}

	var after bytes.Buffer
	after.Write(content[from:edit.Span.Start])
	after.WriteString(edit.NewText)
	after.Write(content[edit.Span.End:to])

	return fixEditPreview{
		before: previewLines(content[from:to]),
		after:  previewLines(after.Bytes()),
	}, nil
}

func previewLines(block []byte) []string {
	if len(block) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(block), "\n"), "\n")
}
