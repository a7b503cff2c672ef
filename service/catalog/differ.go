package catalog

// Pair couples a local row with the remote object it mirrors.
type Pair[L, R any] struct {
	Local  L
	Remote R
}

// Plan is the outcome of one reconciliation pass for one entity type.
type Plan[L, R any] struct {
	Create []R
	Update []Pair[L, R]
	Delete []L
}

// Diff reconciles a local set against a remote snapshot, keyed by external
// id. localID returns "" for locally originated rows; those are never
// matched and never deleted — sync only owns what it mirrored.
//
// Remote duplicates (the platform should not produce them): the first
// occurrence claims the local match, later ones fall through to Create.
// That re-creates rows rather than corrupting an existing one.
func Diff[L, R any](local []L, remotes []R, localID func(L) string, remoteID func(R) string) Plan[L, R] {
	byExt := make(map[string]int, len(local))
	for i, l := range local {
		if id := localID(l); id != "" {
			byExt[id] = i
		}
	}

	var plan Plan[L, R]
	claimed := make(map[string]bool, len(remotes))
	remoteIDs := make(map[string]bool, len(remotes))

	for _, r := range remotes {
		id := remoteID(r)
		remoteIDs[id] = true
		if i, ok := byExt[id]; ok && !claimed[id] {
			claimed[id] = true
			plan.Update = append(plan.Update, Pair[L, R]{Local: local[i], Remote: r})
			continue
		}
		plan.Create = append(plan.Create, r)
	}

	for _, l := range local {
		id := localID(l)
		if id == "" {
			continue
		}
		if !remoteIDs[id] {
			plan.Delete = append(plan.Delete, l)
		}
	}
	return plan
}
