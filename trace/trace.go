// Package trace loads a command trace from a plain-text file: one command
// per line, whitespace-separated fields "ppn operation arrivalTick
// [mergeSnapshot]", operation one of R/W/E. Lines beginning with '#' and
// blank lines are ignored.
package trace

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"nandpal/pal"
)

// getTokens splits curLine on runs of whitespace (via strings.Fields, which
// allocates a slice per line) and copies up to len(tokens) of the fields
// into tokens, returning how many it copied.
func getTokens(tokens []string, curLine string) int {
	n := 0
	fields := strings.Fields(curLine)
	for _, f := range fields {
		if n == len(tokens) {
			break
		}
		tokens[n] = f
		n++
	}
	return n
}

func parseOperation(s string) (pal.Operation, error) {
	switch strings.ToUpper(s) {
	case "R", "READ":
		return pal.OpRead, nil
	case "W", "WRITE":
		return pal.OpWrite, nil
	case "E", "ERASE":
		return pal.OpErase, nil
	default:
		return 0, errors.Errorf("trace: unknown operation %q", s)
	}
}

// Load reads every command from r.
func Load(r io.Reader) ([]pal.Command, error) {
	scanner := bufio.NewScanner(r)
	var cmds []pal.Command
	var tokens [4]string
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		n := getTokens(tokens[:], line)
		if n < 3 {
			return nil, errors.Errorf("trace: line %d: expected at least 3 fields, got %d", lineNo, n)
		}

		ppn, err := strconv.ParseUint(tokens[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "trace: line %d: parsing ppn", lineNo)
		}
		op, err := parseOperation(tokens[1])
		if err != nil {
			return nil, errors.Wrapf(err, "trace: line %d", lineNo)
		}
		arrival, err := strconv.ParseUint(tokens[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "trace: line %d: parsing arrivalTick", lineNo)
		}
		var merge bool
		if n >= 4 {
			merge = tokens[3] == "1" || strings.EqualFold(tokens[3], "true")
		}

		cmds = append(cmds, pal.Command{
			PPN:           ppn,
			Operation:     op,
			ArrivalTick:   pal.Tick(arrival),
			MergeSnapshot: merge,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "trace: scanning")
	}
	return cmds, nil
}

// LoadFile opens path, transparently decompressing it if it ends in .gz (via
// klauspost/compress/gzip, the same decoder grailbio/bio's interval and
// encoding packages use for compressed inputs), and loads it.
func LoadFile(path string) ([]pal.Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "trace: opening %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "trace: opening gzip reader for %s", path)
		}
		defer gz.Close()
		r = gz
	}
	return Load(r)
}
