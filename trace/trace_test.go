package trace

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"nandpal/pal"
)

func TestLoadParsesCommandsAndSkipsCommentsAndBlanks(t *testing.T) {
	const doc = `# a trace file
0 R 0

100 W 500 1
200 E 1000
`
	cmds, err := Load(strings.NewReader(doc))
	assert.NoError(t, err)
	assert.Equal(t, []pal.Command{
		{PPN: 0, Operation: pal.OpRead, ArrivalTick: 0, MergeSnapshot: false},
		{PPN: 100, Operation: pal.OpWrite, ArrivalTick: 500, MergeSnapshot: true},
		{PPN: 200, Operation: pal.OpErase, ArrivalTick: 1000, MergeSnapshot: false},
	}, cmds)
}

func TestLoadAcceptsLongFormOperationNamesAndMergeSpellings(t *testing.T) {
	const doc = `0 read 0 true
1 write 1 TRUE
2 erase 2 0
`
	cmds, err := Load(strings.NewReader(doc))
	assert.NoError(t, err)
	assert.Equal(t, pal.OpRead, cmds[0].Operation)
	assert.True(t, cmds[0].MergeSnapshot)
	assert.True(t, cmds[1].MergeSnapshot)
	assert.False(t, cmds[2].MergeSnapshot)
}

func TestLoadRejectsTooFewFields(t *testing.T) {
	_, err := Load(strings.NewReader("0 R\n"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownOperation(t *testing.T) {
	_, err := Load(strings.NewReader("0 X 0\n"))
	assert.Error(t, err)
}

func TestLoadRejectsNonNumericPPN(t *testing.T) {
	_, err := Load(strings.NewReader("abc R 0\n"))
	assert.Error(t, err)
}

func TestLoadFileReadsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.txt")
	assert.NoError(t, os.WriteFile(path, []byte("5 R 10\n"), 0o644))
	cmds, err := LoadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []pal.Command{{PPN: 5, Operation: pal.OpRead, ArrivalTick: 10}}, cmds)
}

func TestLoadFileTransparentlyDecompressesGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.txt.gz")
	f, err := os.Create(path)
	assert.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("7 W 20 1\n"))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, f.Close())

	cmds, err := LoadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []pal.Command{{PPN: 7, Operation: pal.OpWrite, ArrivalTick: 20, MergeSnapshot: true}}, cmds)
}

func TestLoadFileRejectsMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
