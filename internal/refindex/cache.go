// Copyright 2026, Kerby Shedden and the Pemap contributors.

package refindex

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"modernc.org/kv"

	"github.com/kshedden/pemap/internal/logging"
	"github.com/kshedden/pemap/internal/seed"
)

// manifestKey sorts after every possible 4-byte bucket key (a
// fingerprint is at most 0xFFFFFFFF, four bytes; this key is five
// bytes of 0xFF, which is lexicographically greater than any 4-byte
// key once the shared prefix compares equal), so a bucket-reconstruction
// scan can stop as soon as it sees a key of any other length.
var manifestKey = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

type cacheManifest struct {
	ReferenceHash string
	K             int
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LoadOrBuild builds the seed index for sequences, first trying to
// satisfy it from the modernc.org/kv-backed cache at cachePath (keyed
// by a SHA-256 of refPath and k). A hash or k mismatch, or any read
// error, is treated as a cache miss, not a fatal error: the index is
// rebuilt and the cache file is rewritten. An empty cachePath disables
// caching entirely.
func LoadOrBuild(refPath string, sequences []Sequence, k int, useBloomPrefilter bool, cachePath string, log *logging.Logger) (*Index, error) {
	if cachePath == "" {
		return Build(sequences, k, useBloomPrefilter, log)
	}

	hash, err := hashFile(refPath)
	if err != nil {
		return nil, fmt.Errorf("refindex: hashing %s: %w", refPath, err)
	}

	if ix, ok := tryLoadCache(cachePath, hash, k, sequences, log); ok {
		if useBloomPrefilter {
			ix.prefilter = buildPrefilter(sequences, k)
		}
		return ix, nil
	}

	ix, err := Build(sequences, k, useBloomPrefilter, log)
	if err != nil {
		return nil, err
	}
	if err := saveCache(cachePath, hash, k, ix, log); err != nil && log != nil {
		log.Printf("warning: could not write index cache %s: %v", cachePath, err)
	}
	return ix, nil
}

func buildPrefilter(sequences []Sequence, k int) *seed.BloomPrefilter {
	var n uint64
	for _, s := range sequences {
		if len(s.Seq) >= k {
			n += uint64(len(s.Seq) - k + 1)
		}
	}
	bf := seed.NewBloomPrefilter(n, 4)
	for _, s := range sequences {
		for off := 0; off+k <= len(s.Seq); off++ {
			window := s.Seq[off : off+k]
			if seed.Fingerprint(window) == seed.Sentinel {
				continue
			}
			bf.Add(window)
		}
	}
	return bf
}

func tryLoadCache(cachePath, hash string, k int, sequences []Sequence, log *logging.Logger) (*Index, bool) {
	db, err := kv.Open(cachePath, &kv.Options{})
	if err != nil {
		return nil, false
	}
	defer db.Close()

	raw, err := db.Get(nil, manifestKey)
	if err != nil || raw == nil {
		return nil, false
	}
	var m cacheManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	if m.ReferenceHash != hash || m.K != k {
		return nil, false
	}

	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil, false
		}
		return nil, false
	}

	var buckets []Bucket
	for {
		key, val, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, false
		}
		if len(key) != 4 {
			break
		}
		fp := binary.BigEndian.Uint32(key)
		if len(val)%8 != 0 {
			return nil, false
		}
		positions := make([]Position, len(val)/8)
		for i := range positions {
			positions[i] = Position{
				SeqIndex: int(binary.BigEndian.Uint32(val[i*8 : i*8+4])),
				Offset:   int(binary.BigEndian.Uint32(val[i*8+4 : i*8+8])),
			}
		}
		buckets = append(buckets, Bucket{ID: fp, Positions: positions})
	}

	if log != nil {
		log.Printf("loaded %d cached seed buckets from %s", len(buckets), cachePath)
	}

	return &Index{Sequences: sequences, K: k, buckets: buckets}, true
}

func saveCache(cachePath, hash string, k int, ix *Index, log *logging.Logger) error {
	os.Remove(cachePath)
	db, err := kv.Create(cachePath, &kv.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	manifest, err := json.Marshal(cacheManifest{ReferenceHash: hash, K: k})
	if err != nil {
		return err
	}
	if err := db.Set(manifestKey, manifest); err != nil {
		return err
	}

	for i := 0; i < ix.NumBuckets(); i++ {
		b := ix.LookupByIndex(i)
		key := make([]byte, 4)
		binary.BigEndian.PutUint32(key, b.ID)
		val := make([]byte, 8*len(b.Positions))
		for j, p := range b.Positions {
			binary.BigEndian.PutUint32(val[j*8:j*8+4], uint32(p.SeqIndex))
			binary.BigEndian.PutUint32(val[j*8+4:j*8+8], uint32(p.Offset))
		}
		if err := db.Set(key, val); err != nil {
			return err
		}
	}

	if log != nil {
		log.Printf("wrote %d seed buckets to cache %s", ix.NumBuckets(), cachePath)
	}
	return nil
}
