package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

const (
	defaultBlockCacheMiB = 64
	writeBufferMiB       = 32
)

// options returns the leveldb options for a database with a block cache of
// the given size. Units, balls and main chain entries are written once and
// read many times, so seek-triggered compactions are disabled.
func options(blockCacheMiB int) *opt.Options {
	if blockCacheMiB <= 0 {
		blockCacheMiB = defaultBlockCacheMiB
	}
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     blockCacheMiB * opt.MiB,
		WriteBuffer:            writeBufferMiB * opt.MiB,
		DisableSeeksCompaction: true,
	}
}
