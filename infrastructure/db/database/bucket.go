package database

import (
	"encoding/hex"
)

const bucketSeparator = '/'

// Bucket is a key prefix made of a path of bucket names, each followed by
// bucketSeparator. Cursors opened on a bucket see only the keys under it.
type Bucket struct {
	path []byte
}

// MakeBucket creates a bucket from the given path of bucket names
func MakeBucket(path ...[]byte) *Bucket {
	var bucket Bucket
	for _, name := range path {
		bucket.path = appendBucketName(bucket.path, name)
	}
	return &bucket
}

// BucketFromPath returns the bucket whose Path is path. A separator is
// appended if path does not end with one.
func BucketFromPath(path []byte) *Bucket {
	if len(path) > 0 && path[len(path)-1] == bucketSeparator {
		return &Bucket{path: append([]byte(nil), path...)}
	}
	return &Bucket{path: append(append([]byte(nil), path...), bucketSeparator)}
}

func appendBucketName(path []byte, name []byte) []byte {
	extended := make([]byte, 0, len(path)+len(name)+1)
	extended = append(extended, path...)
	extended = append(extended, name...)
	return append(extended, bucketSeparator)
}

// Bucket returns the sub-bucket named bucketBytes
func (b *Bucket) Bucket(bucketBytes []byte) *Bucket {
	return &Bucket{path: appendBucketName(b.path, bucketBytes)}
}

// Key returns the key with the given suffix in this bucket
func (b *Bucket) Key(suffix []byte) *Key {
	return &Key{bucket: b, suffix: suffix}
}

// Path returns the full prefix of the bucket, including the trailing
// separator. The returned slice must not be modified.
func (b *Bucket) Path() []byte {
	return b.path
}

// Key is a suffix within a bucket
type Key struct {
	bucket *Bucket
	suffix []byte
}

// Bytes returns the bucket path followed by the suffix
func (k *Key) Bytes() []byte {
	keyBytes := make([]byte, 0, len(k.bucket.path)+len(k.suffix))
	keyBytes = append(keyBytes, k.bucket.path...)
	return append(keyBytes, k.suffix...)
}

func (k *Key) String() string {
	return hex.EncodeToString(k.Bytes())
}

// Bucket returns the bucket of the key
func (k *Key) Bucket() *Bucket {
	return k.bucket
}

// Suffix returns the key without its bucket path
func (k *Key) Suffix() []byte {
	return k.suffix
}
