package assetcache

// ContentCache is the best-effort binary object store capability:
// key-addressed put/get/delete/has with platform-managed eviction.
// Writes may be refused under resource pressure and entries may vanish
// at any time; callers must tolerate both.
type ContentCache interface {
	Get(key string) (data []byte, mimeType string, ok bool)
	Put(key string, data []byte, mimeType string) error
	Delete(key string) error
	Has(key string) bool
	Usage() (int64, error)
}
