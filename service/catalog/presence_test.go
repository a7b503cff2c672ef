package catalog

import (
	"reflect"
	"testing"

	"posbridge.GO/remote"
)

func TestVisibleAt_ExplicitPresentListWins(t *testing.T) {
	p := remote.PresenceData{
		PresentAtAllLocations: true, // ignored when the present list is non-empty
		PresentAtLocationIDs:  []string{"loc-a", "loc-b"},
		AbsentAtLocationIDs:   []string{"loc-b"},
	}

	if !VisibleAt(p, "loc-a") {
		t.Error("loc-a should be visible")
	}
	if !VisibleAt(p, "loc-b") {
		t.Error("loc-b is on the present list, absent list must not apply")
	}
	if VisibleAt(p, "loc-c") {
		t.Error("loc-c is not on the present list")
	}
}

func TestVisibleAt_AllLocationsMinusAbsent(t *testing.T) {
	p := remote.PresenceData{
		PresentAtAllLocations: true,
		AbsentAtLocationIDs:   []string{"loc-b"},
	}

	if !VisibleAt(p, "loc-a") {
		t.Error("loc-a should be visible everywhere minus absences")
	}
	if VisibleAt(p, "loc-b") {
		t.Error("loc-b is on the absent list")
	}
}

func TestVisibleAt_NeitherFlagMeansInvisible(t *testing.T) {
	p := remote.PresenceData{}
	if VisibleAt(p, "loc-a") {
		t.Error("no present list and not present-at-all: visible nowhere")
	}
}

func TestVisibleLocations(t *testing.T) {
	p := remote.PresenceData{
		PresentAtAllLocations: true,
		AbsentAtLocationIDs:   []string{"loc-b"},
	}
	got := VisibleLocations(p, []string{"loc-a", "loc-b", "loc-c"})
	want := []string{"loc-a", "loc-c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("VisibleLocations = %v, want %v", got, want)
	}
}
