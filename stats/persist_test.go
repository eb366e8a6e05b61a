package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"nandpal/pal"
)

func TestSaveLoadSnapshotRoundTrip(t *testing.T) {
	s := Snapshot{
		LastTick:             12345,
		LatencyCount:         [3]uint64{1, 2, 3},
		LatencySum:           [3]pal.Tick{10, 20, 30},
		LatencyMin:           [3]pal.Tick{1, 2, 3},
		LatencyMax:           [3]pal.Tick{9, 8, 7},
		VerificationFailures: 4,
		LatencyZeroCount:     5,
		SnapshotCount:        6,
	}

	path := filepath.Join(t.TempDir(), "snapshot.bin")
	assert.NoError(t, SaveSnapshot(path, s))

	loaded, err := LoadSnapshot(path)
	assert.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoadSnapshotRejectsMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestLoadSnapshotRejectsCorruptData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.bin")
	assert.NoError(t, os.WriteFile(path, []byte("not a snappy frame at all, definitely"), 0o644))
	_, err := LoadSnapshot(path)
	assert.Error(t, err)
}
