package vectorindex

import "testing"

func TestPointID_DeterministicForSameChunkID(t *testing.T) {
	a := PointID("chunk-123")
	b := PointID("chunk-123")
	if a != b {
		t.Fatalf("expected identical point IDs, got %q and %q", a, b)
	}
}

func TestPointID_DiffersAcrossChunkIDs(t *testing.T) {
	a := PointID("chunk-123")
	b := PointID("chunk-456")
	if a == b {
		t.Fatal("expected different point IDs for different chunk IDs")
	}
}

func TestBuildQdrantFilter_WildcardRepoImposesNoConstraint(t *testing.T) {
	for _, wildcard := range []string{"", ".", "*"} {
		if f := buildQdrantFilter(Filter{Repo: wildcard}); f != nil {
			t.Fatalf("expected no filter for repo=%q, got %+v", wildcard, f)
		}
	}
}

func TestBuildQdrantFilter_RepoAndBranchBothApplied(t *testing.T) {
	f := buildQdrantFilter(Filter{Repo: "forge", Branch: "R1"})
	if f == nil || len(f.Must) != 2 {
		t.Fatalf("expected 2 conjunctive conditions, got %+v", f)
	}
}
