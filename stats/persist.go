package stats

import (
	"bytes"
	"encoding/gob"
	"io/ioutil"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// SaveSnapshot gob-encodes s, compresses it with snappy, and writes it to
// path — the same encode-then-compress idiom grailbio/bio uses for its
// binary sidecar files (gob for a stable wire shape, snappy for fast
// symmetric compression on data that doesn't need gzip's ratio).
func SaveSnapshot(path string, s Snapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return errors.Wrap(err, "stats: encoding snapshot")
	}
	compressed := snappy.Encode(nil, buf.Bytes())
	if err := ioutil.WriteFile(path, compressed, 0644); err != nil {
		return errors.Wrapf(err, "stats: writing %s", path)
	}
	return nil
}

// LoadSnapshot reverses SaveSnapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	compressed, err := ioutil.ReadFile(path)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "stats: reading %s", path)
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "stats: decompressing snapshot")
	}
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&s); err != nil {
		return Snapshot{}, errors.Wrap(err, "stats: decoding snapshot")
	}
	return s, nil
}
