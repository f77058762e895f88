// Package zipvfs reads files stored inside zip-format archives (jar, zip) as
// if they were ordinary files.
//
// Open archives are shared through a [cache.Cache], which keeps a bounded
// number of them resident, reopens an archive when its modification time or
// size changes, and closes evicted archives once no caller is using them.
// Each open archive carries an index of its entries keyed by relative path
// that stores only the final segment of each path.
//
// # Quick Start
//
// Construct one cache for the process and a Handler per archive:
//
//	c, err := cache.New(cache.WithCapacity(20))
//	if err != nil {
//	    return err
//	}
//	h := zipvfs.New("/opt/lib/app.jar", c)
//	data, err := h.ContentsToBytes("META-INF/MANIFEST.MF")
//
// Entries larger than the size limit are rejected by ContentsToBytes with
// [ErrOversizedContent]; stream them with OpenInputStream instead:
//
//	rc, err := h.OpenInputStream("assets/big.bin")
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//
// # Reading strategies
//
// Archives on local disk are read natively. Archives that are not visible to
// a direct local probe are treated as remote and read through a block
// read-ahead cache that keeps the number of I/O calls low. A third strategy
// mounts the archive as an io/fs view; [cache.WithForceOverlay] selects it
// for every archive.
package zipvfs
