package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

// checksumFile hashes a trace file's raw bytes with HighwayHash, the way
// cmd/bio-pamtool reaches for a non-cryptographic streaming hash
// (seahash there) rather than hand-rolling one. HighwayHash takes a keyed
// 32-byte seed; checksumKey is fixed at all zeros and no flag sets it, so
// every run hashes with the same key.
var checksumKey = make([]byte, 32)

func checksumFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := highwayhash.New(checksumKey)
	if err != nil {
		return err
	}
	if _, err := io.Copy(h, bufio.NewReader(f)); err != nil {
		return err
	}
	fmt.Printf("%x  %s\n", h.Sum(nil), path)
	return nil
}
