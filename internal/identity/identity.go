// Package identity derives content identity keys from pixel data. The key
// answers "is this the same real-world item" independent of filename, path,
// or container metadata: two files with identical decoded pixels share one
// identity, and re-encoded videos match through a similarity digest instead
// of exact equality.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"math/bits"

	"github.com/corona10/goimagehash"

	"photomerge/internal/services"
)

// Kind distinguishes the two digest families. Keys from different kinds
// never match each other.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Key is a content identity: digest plus the family it was computed under.
type Key struct {
	Kind   Kind
	Digest string
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.Digest
}

// Image computes the exact pixel digest for a decoded image. The digest
// covers dimensions and raw NRGBA rows, so identical pixels under any
// filename produce identical keys while a single changed pixel does not.
func Image(img *image.NRGBA) Key {
	h := sha256.New()

	bounds := img.Bounds()
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(bounds.Dx()))
	binary.BigEndian.PutUint32(header[4:8], uint32(bounds.Dy()))
	h.Write(header[:])

	// Hash row by row: the stride may exceed the row width and the padding
	// bytes are not pixel data.
	rowLen := bounds.Dx() * 4
	for y := 0; y < bounds.Dy(); y++ {
		offset := y * img.Stride
		h.Write(img.Pix[offset : offset+rowLen])
	}

	return Key{Kind: KindImage, Digest: hex.EncodeToString(h.Sum(nil))}
}

// Video computes the similarity digest from sampled frames: one 64-bit
// perceptual hash per frame, concatenated in sample order. With the default
// four frames the digest is 256 bits wide. Matching is by Hamming distance,
// not equality.
func Video(frames []image.Image) (Key, error) {
	if len(frames) == 0 {
		return Key{}, services.Wrap(services.ErrDecode, "identity", "video-digest", "no frames sampled", nil)
	}
	digest := make([]byte, 0, len(frames)*8)
	for i, frame := range frames {
		hash, err := goimagehash.PerceptionHash(frame)
		if err != nil {
			return Key{}, services.Wrap(services.ErrDecode, "identity", "video-digest",
				fmt.Sprintf("hash frame %d", i), err)
		}
		var chunk [8]byte
		binary.BigEndian.PutUint64(chunk[:], hash.GetHash())
		digest = append(digest, chunk[:]...)
	}
	return Key{Kind: KindVideo, Digest: hex.EncodeToString(digest)}, nil
}

// HammingDistance counts differing bits between two equal-width hex digests.
func HammingDistance(a, b string) (int, error) {
	rawA, err := hex.DecodeString(a)
	if err != nil {
		return 0, fmt.Errorf("decode digest %q: %w", a, err)
	}
	rawB, err := hex.DecodeString(b)
	if err != nil {
		return 0, fmt.Errorf("decode digest %q: %w", b, err)
	}
	if len(rawA) != len(rawB) {
		return 0, fmt.Errorf("digest widths differ: %d vs %d bytes", len(rawA), len(rawB))
	}
	distance := 0
	for i := range rawA {
		distance += bits.OnesCount8(rawA[i] ^ rawB[i])
	}
	return distance, nil
}
