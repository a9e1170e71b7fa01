package boltstore

import (
	"bytes"

	bolt "go.etcd.io/bbolt"
)

// Index entries are composite keys with empty values: the indexed string,
// a zero separator, then the owner identity big-endian. The separator
// keeps "Love" from prefix-matching "Lovelace"; the identity suffix makes
// every entry unique and returns scan results in identity order.

func indexKey(value string, id int64) []byte {
	k := make([]byte, 0, len(value)+9)
	k = append(k, value...)
	k = append(k, 0x00)
	k = append(k, itob(id)...)
	return k
}

// indexSeek collects the owner identities recorded under an exact value.
func indexSeek(b *bolt.Bucket, value string) []int64 {
	prefix := append([]byte(value), 0x00)
	var ids []int64
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		if len(k) == len(prefix)+8 {
			ids = append(ids, btoi(k[len(prefix):]))
		}
	}
	return ids
}
