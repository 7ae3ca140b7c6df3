package object

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	diffmatchpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/forgevcs/forge/plumbing/filemode"
)

// maxStatLineLength is the maximum width, in characters, of the +/- graph
// rendered by FileStat.String, matching the column git's diff --stat uses.
const maxStatLineLength = 53

// FileStat stores the status of changes within a file.
type FileStat struct {
	Name              string
	Addition, Deletion int
}

// String renders a single line in the style of "git diff --stat": the file
// name, the total number of changed lines, and a scaled +/- graph.
func (fs FileStat) String() string {
	addn, deln := fs.Addition, fs.Deletion
	total := addn + deln
	if total > maxStatLineLength {
		ratio := float64(maxStatLineLength) / float64(total)
		if addn > 0 {
			addn = ceilPositive(float64(addn) * ratio)
		}
		deln = maxStatLineLength - addn
	}

	return fmt.Sprintf(" %s | %d %s%s\n",
		fs.Name, fs.Addition+fs.Deletion,
		strings.Repeat("+", addn), strings.Repeat("-", deln))
}

func ceilPositive(f float64) int {
	i := int(f)
	if float64(i) < f {
		i++
	}
	return i
}

// FileStats is a collection of FileStat, one per changed file.
type FileStats []FileStat

func (fs FileStats) String() string {
	var buf bytes.Buffer
	for _, s := range fs {
		buf.WriteString(s.String())
	}
	return buf.String()
}

// FilePatch is the diff between two versions of a single file.
type FilePatch struct {
	From, To *File
	Chunks   []Chunk
}

// Chunk is a contiguous block of a unified diff: either unchanged, added, or
// removed content.
type Chunk struct {
	Content string
	Type    ChunkType
}

// ChunkType classifies a Chunk.
type ChunkType int8

const (
	ChunkEqual ChunkType = iota
	ChunkAdd
	ChunkDelete
)

// Patch is the set of per-file differences between two trees.
type Patch struct {
	Message     string
	FilePatches []FilePatch
}

// String renders the patch in unified diff form.
func (p *Patch) String() string {
	buf := bytes.NewBuffer(nil)
	_ = p.Encode(buf)
	return buf.String()
}

// Stats summarizes each file patch as additions/deletions.
func (p *Patch) Stats() FileStats {
	var out FileStats
	for _, fp := range p.FilePatches {
		var name string
		var addition, deletion int
		switch {
		case fp.From == nil && fp.To != nil:
			name = fp.To.Name
		case fp.To == nil && fp.From != nil:
			name = fp.From.Name
		case fp.From != nil:
			name = fp.From.Name
		}

		for _, c := range fp.Chunks {
			switch c.Type {
			case ChunkAdd:
				addition += countLines(c.Content)
			case ChunkDelete:
				deletion += countLines(c.Content)
			}
		}

		if name == "" {
			continue
		}

		out = append(out, FileStat{Name: name, Addition: addition, Deletion: deletion})
	}
	return out
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// Encode writes the patch to w in unified diff ("diff --git") form.
func (p *Patch) Encode(w io.Writer) error {
	for _, fp := range p.FilePatches {
		if err := encodeFilePatch(w, fp); err != nil {
			return err
		}
	}
	return nil
}

func encodeFilePatch(w io.Writer, fp FilePatch) error {
	fromName, toName := "/dev/null", "/dev/null"
	if fp.From != nil {
		fromName = "a/" + fp.From.Name
	}
	if fp.To != nil {
		toName = "b/" + fp.To.Name
	}

	name := toName
	if fp.From != nil {
		name = fromName
	}
	name = strings.TrimPrefix(strings.TrimPrefix(name, "a/"), "b/")

	if _, err := fmt.Fprintf(w, "diff --git a/%s b/%s\n", name, name); err != nil {
		return err
	}

	switch {
	case fp.From == nil && fp.To != nil:
		if _, err := fmt.Fprintf(w, "new file mode %s\n", fp.To.Mode); err != nil {
			return err
		}
	case fp.To == nil && fp.From != nil:
		if _, err := fmt.Fprintf(w, "deleted file mode %s\n", fp.From.Mode); err != nil {
			return err
		}
	}

	fromHash, toHash := "0000000000000000000000000000000000000000", "0000000000000000000000000000000000000000"
	if fp.From != nil {
		fromHash = fp.From.Hash.String()
	}
	if fp.To != nil {
		toHash = fp.To.Hash.String()
	}
	mode := ""
	if fp.From != nil {
		mode = " " + fp.From.Mode.String()
	} else if fp.To != nil {
		mode = " " + fp.To.Mode.String()
	}
	if _, err := fmt.Fprintf(w, "index %s..%s%s\n", fromHash, toHash, mode); err != nil {
		return err
	}

	binary, err := isBinaryPatch(fp)
	if err != nil {
		return err
	}
	if binary {
		_, err := fmt.Fprintf(w, "Binary files %s and %s differ\n", fromName, toName)
		return err
	}

	if _, err := fmt.Fprintf(w, "--- %s\n+++ %s\n", fromName, toName); err != nil {
		return err
	}

	return encodeChunks(w, fp.Chunks)
}

func isBinaryPatch(fp FilePatch) (bool, error) {
	for _, f := range []*File{fp.From, fp.To} {
		if f == nil {
			continue
		}
		ok, err := f.IsBinary()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func encodeChunks(w io.Writer, chunks []Chunk) error {
	oldLen, newLen := 0, 0
	for _, c := range chunks {
		switch c.Type {
		case ChunkAdd:
			newLen += countLines(c.Content)
		case ChunkDelete:
			oldLen += countLines(c.Content)
		case ChunkEqual:
			n := countLines(c.Content)
			oldLen += n
			newLen += n
		}
	}

	oldStart, newStart := 1, 1
	if oldLen == 0 {
		oldStart = 0
	}
	if newLen == 0 {
		newStart = 0
	}

	if _, err := fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", oldStart, oldLen, newStart, newLen); err != nil {
		return err
	}

	for _, c := range chunks {
		prefix := ' '
		switch c.Type {
		case ChunkAdd:
			prefix = '+'
		case ChunkDelete:
			prefix = '-'
		}

		lines := splitKeepingEmpty(c.Content)
		for _, l := range lines {
			if _, err := fmt.Fprintf(w, "%c%s\n", prefix, l); err != nil {
				return err
			}
		}
	}

	return nil
}

func splitKeepingEmpty(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// getPatch computes the FilePatch for a single Change.
func getPatch(message string, changes ...*Change) (*Patch, error) {
	var filePatches []FilePatch
	for _, c := range changes {
		fp, err := filePatchForChange(c)
		if err != nil {
			return nil, err
		}
		if fp != nil {
			filePatches = append(filePatches, *fp)
		}
	}

	return &Patch{Message: message, FilePatches: filePatches}, nil
}

func filePatchForChange(c *Change) (*FilePatch, error) {
	from, to, err := c.Files()
	if err != nil {
		return nil, err
	}

	if from == nil && to == nil {
		return nil, nil
	}

	var fromContent, toContent string
	if from != nil {
		if bin, err := from.IsBinary(); err == nil && !bin {
			fromContent, err = from.Contents()
			if err != nil {
				return nil, err
			}
		}
	}
	if to != nil {
		if bin, err := to.IsBinary(); err == nil && !bin {
			toContent, err = to.Contents()
			if err != nil {
				return nil, err
			}
		}
	}

	chunks := diffLines(fromContent, toContent)
	return &FilePatch{From: from, To: to, Chunks: chunks}, nil
}

func diffLines(from, to string) []Chunk {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToRunes(from, to)
	diffs := dmp.DiffMainRunes(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var chunks []Chunk
	for _, d := range diffs {
		var t ChunkType
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			t = ChunkAdd
		case diffmatchpatch.DiffDelete:
			t = ChunkDelete
		default:
			t = ChunkEqual
		}
		chunks = append(chunks, Chunk{Content: d.Text, Type: t})
	}
	return chunks
}

// diffTrees computes the Changes between two trees by comparing their
// entries directly, recursing into subtrees. It does not perform rename
// detection.
func diffTrees(ctx context.Context, from, to *Tree) (Changes, error) {
	fromNames := map[string]TreeEntry{}
	if from != nil {
		for _, e := range from.Entries {
			fromNames[e.Name] = e
		}
	}

	toNames := map[string]TreeEntry{}
	if to != nil {
		for _, e := range to.Entries {
			toNames[e.Name] = e
		}
	}

	var changes Changes
	seen := map[string]bool{}

	walk := func(entries []TreeEntry, t *Tree) error {
		for _, e := range entries {
			if seen[e.Name] {
				continue
			}
			seen[e.Name] = true

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			fe, fromHas := fromNames[e.Name]
			te, toHas := toNames[e.Name]

			switch {
			case fromHas && toHas && fe.Hash == te.Hash && fe.Mode == te.Mode:
				continue
			case fromHas && fe.Mode == filemode.Dir && toHas && te.Mode == filemode.Dir:
				subFrom, err := GetTree(from.s, fe.Hash)
				if err != nil {
					return err
				}
				subTo, err := GetTree(to.s, te.Hash)
				if err != nil {
					return err
				}
				sub, err := diffTrees(ctx, subFrom, subTo)
				if err != nil {
					return err
				}
				changes = append(changes, sub...)
			case fromHas && fe.Mode != filemode.Dir && !toHas:
				changes = append(changes, &Change{From: ChangeEntry{Name: e.Name, Tree: from, TreeEntry: fe}})
			case !fromHas && toHas && te.Mode != filemode.Dir:
				changes = append(changes, &Change{To: ChangeEntry{Name: e.Name, Tree: to, TreeEntry: te}})
			case fromHas && toHas:
				changes = append(changes, &Change{
					From: ChangeEntry{Name: e.Name, Tree: from, TreeEntry: fe},
					To:   ChangeEntry{Name: e.Name, Tree: to, TreeEntry: te},
				})
			}
		}
		return nil
	}

	if from != nil {
		if err := walk(from.Entries, from); err != nil {
			return nil, err
		}
	}
	if to != nil {
		if err := walk(to.Entries, to); err != nil {
			return nil, err
		}
	}

	return changes, nil
}
