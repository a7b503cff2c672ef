package catalog

import "testing"

type localRow struct {
	ID  uint
	Ext string
}

type remoteRow struct {
	Ext string
}

func diffRows(locals []localRow, remotes []remoteRow) Plan[localRow, remoteRow] {
	return Diff(locals, remotes,
		func(l localRow) string { return l.Ext },
		func(r remoteRow) string { return r.Ext },
	)
}

func TestDiff_Partitions(t *testing.T) {
	locals := []localRow{
		{ID: 1, Ext: "a"},
		{ID: 2, Ext: "b"},
		{ID: 3, Ext: "c"},
	}
	remotes := []remoteRow{
		{Ext: "b"},
		{Ext: "c"},
		{Ext: "d"},
	}

	plan := diffRows(locals, remotes)

	if len(plan.Create) != 1 || plan.Create[0].Ext != "d" {
		t.Errorf("Create = %v, want [d]", plan.Create)
	}
	if len(plan.Update) != 2 {
		t.Fatalf("Update has %d pairs, want 2", len(plan.Update))
	}
	for _, p := range plan.Update {
		if p.Local.Ext != p.Remote.Ext {
			t.Errorf("pair mismatch: local %s vs remote %s", p.Local.Ext, p.Remote.Ext)
		}
	}
	if len(plan.Delete) != 1 || plan.Delete[0].ID != 1 {
		t.Errorf("Delete = %v, want local row 1", plan.Delete)
	}
}

func TestDiff_LocalRowsWithoutExternalIDSurvive(t *testing.T) {
	locals := []localRow{
		{ID: 1, Ext: ""},
		{ID: 2, Ext: "gone"},
	}
	plan := diffRows(locals, nil)

	if len(plan.Delete) != 1 || plan.Delete[0].ID != 2 {
		t.Errorf("Delete = %v, want only the mirrored row", plan.Delete)
	}
}

func TestDiff_EmptyRemoteDeletesAllMirrored(t *testing.T) {
	locals := []localRow{
		{ID: 1, Ext: "a"},
		{ID: 2, Ext: "b"},
	}
	plan := diffRows(locals, []remoteRow{})

	if len(plan.Create) != 0 || len(plan.Update) != 0 {
		t.Errorf("Create/Update = %v/%v, want empty", plan.Create, plan.Update)
	}
	if len(plan.Delete) != 2 {
		t.Errorf("Delete has %d rows, want 2", len(plan.Delete))
	}
}

func TestDiff_RemoteDuplicateFallsThroughToCreate(t *testing.T) {
	locals := []localRow{{ID: 1, Ext: "a"}}
	remotes := []remoteRow{{Ext: "a"}, {Ext: "a"}}

	plan := diffRows(locals, remotes)

	if len(plan.Update) != 1 {
		t.Errorf("Update has %d pairs, want 1 (first occurrence claims the match)", len(plan.Update))
	}
	if len(plan.Create) != 1 {
		t.Errorf("Create has %d rows, want 1 (duplicate re-created)", len(plan.Create))
	}
	if len(plan.Delete) != 0 {
		t.Errorf("Delete = %v, want empty", plan.Delete)
	}
}
