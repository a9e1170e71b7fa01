package core

// EnsureChildSlices normalizes nil child collections to empty slices so
// reconstructed aggregates always round-trip as empty, never null.
func EnsureChildSlices(people []*Person) {
	for _, p := range people {
		if p == nil {
			continue
		}
		if p.Addresses == nil {
			p.Addresses = []Address{}
		}
		if p.Emails == nil {
			p.Emails = []EmailAddress{}
		}
	}
}

// AttachChildren distributes flat child rows onto their parents by owner
// identity in a single pass per collection. Children referencing an unknown
// parent are dropped. Parents receive empty slices when nothing matches.
func AttachChildren(people []*Person, addresses []Address, emails []EmailAddress) {
	byID := make(map[int64]*Person, len(people))
	for _, p := range people {
		if p == nil {
			continue
		}
		p.Addresses = []Address{}
		p.Emails = []EmailAddress{}
		byID[p.ID] = p
	}
	for _, a := range addresses {
		if p, ok := byID[a.PersonID]; ok {
			p.Addresses = append(p.Addresses, a)
		}
	}
	for _, e := range emails {
		if p, ok := byID[e.PersonID]; ok {
			p.Emails = append(p.Emails, e)
		}
	}
}

// ParentIDs collects the identities of already-persisted aggregates.
// Zero identities (never persisted) are skipped.
func ParentIDs(people []*Person) []int64 {
	ids := make([]int64, 0, len(people))
	for _, p := range people {
		if p == nil || p.ID == 0 {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids
}

// ChunkIDs splits ids into slices of at most size elements. A size of zero
// or less falls back to DefaultBatchSize.
func ChunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}
