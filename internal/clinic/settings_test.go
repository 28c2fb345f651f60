package clinic

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func TestStoreGetReturnsDefaultsWhenMissing(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.Get(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if settings.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, want owner-1", settings.OwnerID)
	}
	if settings.Mode != ModeSingle {
		t.Errorf("Mode = %q, want single", settings.Mode)
	}
	if settings.OwnerProfessionalID != "owner-1" {
		t.Errorf("OwnerProfessionalID = %q, want owner-1", settings.OwnerProfessionalID)
	}
	if !settings.WritebackEnabled {
		t.Error("WritebackEnabled = false, want true by default")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := &Settings{
		OwnerID:             "owner-2",
		Name:                "Sorriso Odonto",
		Mode:                ModeMulti,
		OwnerProfessionalID: "prof-9",
		OwnerEmail:          "owner@sorriso.example",
		Timezone:            "America/Sao_Paulo",
	}
	if err := store.Set(ctx, in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	out, err := store.Get(ctx, "owner-2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Name != in.Name || out.Mode != in.Mode || out.OwnerProfessionalID != in.OwnerProfessionalID {
		t.Errorf("round trip mismatch: got %+v", out)
	}
	if out.IsSingleProfessional() {
		t.Error("IsSingleProfessional = true for multi clinic")
	}
}

func TestStoreSetRequiresOwner(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set(context.Background(), &Settings{}); err == nil {
		t.Fatal("Set accepted settings without owner id")
	}
}
