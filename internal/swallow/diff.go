package swallow

// diffList makes tracked mirror fresh, calling onNew for every value of
// fresh that tracked did not contain, in fresh order, before it is tracked.
// Matches are searched from the current index onwards, so a stable prefix
// (the usual shape of _NET_CLIENT_LIST) costs one comparison per element.
func diffList[T comparable](tracked *[]T, fresh []T, onNew func(T)) {
	list := *tracked
	for i, val := range fresh {
		j := -1
		for k := i; k < len(list); k++ {
			if list[k] == val {
				j = k
				break
			}
		}
		if j < 0 {
			onNew(val)
			list = append(list, val)
			j = len(list) - 1
		}
		list[i], list[j] = list[j], list[i]
	}
	*tracked = list[:len(fresh)]
}
