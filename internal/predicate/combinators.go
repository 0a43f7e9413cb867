package predicate

// Conjoin merges the filter of an action tied at the current access level with
// the accumulated filter: both must hold.
func Conjoin(acc, next Predicate) Predicate {
	return AllOf(acc, next)
}

// Supersede discards the accumulated filter in favour of the filter of an action
// at a strictly higher access level. A nil filter grants everything.
func Supersede(_, next Predicate) Predicate {
	if next == nil {
		return True()
	}
	return next
}

// UnionClusters combines the per-cluster filters: a row is visible when any
// cluster grants it. No cluster means nothing is visible.
func UnionClusters(filters ...Predicate) Predicate {
	return AnyOf(filters...)
}
