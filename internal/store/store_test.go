package store_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"photomerge/internal/identity"
	"photomerge/internal/metadata"
	"photomerge/internal/testsupport"
)

func TestFindOrCreateIdentityIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	key := identity.Key{Kind: identity.KindImage, Digest: strings.Repeat("ab", 32)}
	first, created, err := st.FindOrCreateIdentity(ctx, key)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatal("first upsert should create the identity")
	}

	second, created, err := st.FindOrCreateIdentity(ctx, key)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatal("second upsert must not create a duplicate")
	}
	if first.ID != second.ID {
		t.Fatalf("ids diverged: %d vs %d", first.ID, second.ID)
	}
}

func TestDedupLinkageAcrossOwners(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	key := identity.Key{Kind: identity.KindImage, Digest: strings.Repeat("cd", 32)}
	ident, _, err := st.FindOrCreateIdentity(ctx, key)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}

	alice, err := st.EnsureOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	bob, err := st.EnsureOwner(ctx, "bob")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}

	if _, err := st.UpsertLocation(ctx, ident.ID, alice.ID, "/a/photo.jpg"); err != nil {
		t.Fatalf("location: %v", err)
	}
	if _, err := st.UpsertLocation(ctx, ident.ID, bob.ID, "/b/copy.jpg"); err != nil {
		t.Fatalf("location: %v", err)
	}

	locations, err := st.LocationsForIdentity(ctx, ident.ID)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("locations = %d, want 2 under one identity", len(locations))
	}

	forAlice, err := st.IdentitiesForOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("identities for owner: %v", err)
	}
	if len(forAlice) != 1 || forAlice[0].ID != ident.ID {
		t.Fatalf("identities for alice = %+v, want the shared identity", forAlice)
	}
}

func TestUpsertLocationReimportKeepsOneRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ident, _, err := st.FindOrCreateIdentity(ctx, identity.Key{Kind: identity.KindImage, Digest: strings.Repeat("ef", 32)})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	owner, err := st.EnsureOwner(ctx, "carol")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}

	first, err := st.UpsertLocation(ctx, ident.ID, owner.ID, "/c/img.jpg")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := st.UpsertLocation(ctx, ident.ID, owner.ID, "/c/img.jpg")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("re-import duplicated the location: %d vs %d", first.ID, second.ID)
	}
}

func TestEntriesRoundTripAcrossSources(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ident, _, err := st.FindOrCreateIdentity(ctx, identity.Key{Kind: identity.KindImage, Digest: strings.Repeat("01", 32)})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	owner, err := st.EnsureOwner(ctx, "dave")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	location, err := st.UpsertLocation(ctx, ident.ID, owner.ID, "/d/img.jpg")
	if err != nil {
		t.Fatalf("location: %v", err)
	}

	naive := time.Date(2016, 3, 4, 6, 4, 53, 0, time.UTC)
	aware := time.Date(2016, 3, 4, 14, 4, 53, 0, time.UTC)
	if err := st.UpsertEntries(ctx, location.ID, metadata.SourceEXIF, []metadata.Entry{
		metadata.TimeEntry(metadata.SourceEXIF, metadata.FieldDateTaken, naive, false),
		metadata.RealEntry(metadata.SourceEXIF, metadata.FieldGPSLatitude, 37.77),
	}); err != nil {
		t.Fatalf("upsert exif entries: %v", err)
	}
	if err := st.UpsertEntries(ctx, location.ID, metadata.SourceSidecar, []metadata.Entry{
		metadata.TimeEntry(metadata.SourceSidecar, metadata.FieldDateTaken, aware, true),
		metadata.TextEntry(metadata.SourceSidecar, metadata.FieldTitle, "img.jpg"),
	}); err != nil {
		t.Fatalf("upsert sidecar entries: %v", err)
	}

	entries, err := st.EntriesForIdentity(ctx, ident.ID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}

	var sawNaive, sawAware bool
	for _, entry := range entries {
		if entry.Field != metadata.FieldDateTaken {
			continue
		}
		if entry.TZAware {
			sawAware = true
			if !entry.Time.Equal(aware) {
				t.Fatalf("aware time = %v, want %v", entry.Time, aware)
			}
		} else {
			sawNaive = true
			if !entry.Time.Equal(naive) {
				t.Fatalf("naive time = %v, want %v", entry.Time, naive)
			}
		}
	}
	if !sawNaive || !sawAware {
		t.Fatalf("entries missing a date variant: %+v", entries)
	}
}

func TestUpsertEntriesReplacesAssertion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ident, _, err := st.FindOrCreateIdentity(ctx, identity.Key{Kind: identity.KindImage, Digest: strings.Repeat("23", 32)})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	owner, err := st.EnsureOwner(ctx, "erin")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	location, err := st.UpsertLocation(ctx, ident.ID, owner.ID, "/e/img.jpg")
	if err != nil {
		t.Fatalf("location: %v", err)
	}

	write := func(title string) {
		t.Helper()
		if err := st.UpsertEntries(ctx, location.ID, metadata.SourceSidecar, []metadata.Entry{
			metadata.TextEntry(metadata.SourceSidecar, metadata.FieldTitle, title),
		}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	write("old")
	write("new")

	entries, err := st.EntriesForIdentity(ctx, ident.ID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "new" {
		t.Fatalf("entries = %+v, want one updated title", entries)
	}
}

func TestFindSimilarVideoRespectsThreshold(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stored := strings.Repeat("00", 32)
	if _, _, err := st.FindOrCreateIdentity(ctx, identity.Key{Kind: identity.KindVideo, Digest: stored}); err != nil {
		t.Fatalf("seed video identity: %v", err)
	}

	// Three bits away from the stored digest.
	near := "07" + strings.Repeat("00", 31)
	match, found, err := st.FindSimilarVideo(ctx, near, 6)
	if err != nil {
		t.Fatalf("similar search: %v", err)
	}
	if !found || match.Key.Digest != stored {
		t.Fatalf("match = %+v found=%v, want the seeded identity", match, found)
	}

	// Eight bits away.
	far := "ff" + strings.Repeat("00", 31)
	_, found, err = st.FindSimilarVideo(ctx, far, 6)
	if err != nil {
		t.Fatalf("similar search: %v", err)
	}
	if found {
		t.Fatal("digest beyond the threshold must not match")
	}
}

func TestOwnerSummariesAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ident, _, err := st.FindOrCreateIdentity(ctx, identity.Key{Kind: identity.KindImage, Digest: strings.Repeat("45", 32)})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	owner, err := st.EnsureOwner(ctx, "frank")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := st.UpsertLocation(ctx, ident.ID, owner.ID, "/f/1.jpg"); err != nil {
		t.Fatalf("location: %v", err)
	}
	if _, err := st.UpsertLocation(ctx, ident.ID, owner.ID, "/f/2.jpg"); err != nil {
		t.Fatalf("location: %v", err)
	}
	if err := st.RecordFailure(ctx, "/f/bad.jpg", "decode", "truncated file"); err != nil {
		t.Fatalf("failure: %v", err)
	}

	owners, err := st.ListOwners(ctx)
	if err != nil {
		t.Fatalf("list owners: %v", err)
	}
	if len(owners) != 1 || owners[0].Locations != 2 || owners[0].Identities != 1 {
		t.Fatalf("owners = %+v, want frank with 2 locations, 1 identity", owners)
	}

	stats, err := st.Summarize(ctx)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if stats.Identities != 1 || stats.Locations != 2 || stats.Failures != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	failures, err := st.ListFailures(ctx, 10)
	if err != nil {
		t.Fatalf("list failures: %v", err)
	}
	if len(failures) != 1 || failures[0].Stage != "decode" {
		t.Fatalf("failures = %+v", failures)
	}
}

func TestExportOverrideAndSuggestion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ident, _, err := st.FindOrCreateIdentity(ctx, identity.Key{Kind: identity.KindImage, Digest: strings.Repeat("67", 32)})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	owner, err := st.EnsureOwner(ctx, "grace")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	location, err := st.UpsertLocation(ctx, ident.ID, owner.ID, "/g/img.jpg")
	if err != nil {
		t.Fatalf("location: %v", err)
	}

	if err := st.SetExportOverride(ctx, location.ID, "trips/2019"); err != nil {
		t.Fatalf("override: %v", err)
	}
	if err := st.SetSuggestedExportPath(ctx, location.ID, "2019"); err != nil {
		t.Fatalf("suggestion: %v", err)
	}

	locations, err := st.LocationsForIdentity(ctx, ident.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if locations[0].ExportOverride != "trips/2019" || locations[0].SuggestedExportPath != "2019" {
		t.Fatalf("location = %+v", locations[0])
	}
}
