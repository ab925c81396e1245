package savesystem

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"nurserycore/internal/blob"
	"nurserycore/internal/codec"
	"nurserycore/pkg/domain"
)

func sampleMemento(t *testing.T) domain.Memento {
	t.Helper()
	ids := domain.NewIDAllocator()
	inv := domain.NewInventory()
	fern := domain.NewPlant(ids, domain.MustSpecies(domain.Fern))
	fern.SetAge(5)
	fern.SetWaterLevel(42)
	bed := domain.NewGroup(ids, "Shade Bed", true)
	bed.Add(fern)
	bed.Add(domain.NewPot(ids, domain.NewPlant(ids, domain.MustSpecies(domain.Rose))))
	inv.Add(bed)
	inv.Add(domain.NewPlant(ids, domain.MustSpecies(domain.Cactus)))
	return domain.Memento{
		Day:        5,
		Components: domain.CaptureInventory(inv),
		Pending:    []domain.CommandRecord{{Kind: "water", TargetID: fern.ID(), Status: domain.CommandPending}},
		CreatedAt:  time.Date(2026, 3, 1, 8, 30, 0, 123456789, time.UTC),
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	fsStore, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem: %v", err)
	}
	for _, store := range []blob.Store{blob.NewMemory(), fsStore, blob.NewMockS3ForTests()} {
		t.Run(string(store.Driver()), func(t *testing.T) {
			archive := New(store)
			want := sampleMemento(t)
			info, err := archive.Export(ctx, "week1", want)
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			if info.Key != "week1.sav" || info.Metadata[metaDay] != "5" || info.Metadata[metaFormat] != FormatVersion {
				t.Fatalf("unexpected info %+v", info)
			}
			got, err := archive.Import(ctx, "week1.sav")
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("expected identical memento\nwant %+v\ngot  %+v", want, got)
			}
			inv, err := got.RestoreInventory(domain.NewIDAllocator())
			if err != nil {
				t.Fatalf("restore: %v", err)
			}
			if inv.Len() != 2 || len(inv.Plants()) != 3 {
				t.Fatalf("expected 2 top-level items holding 3 plants, got %d/%d", inv.Len(), len(inv.Plants()))
			}
		})
	}
}

func TestExportRespectsOverwrite(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	m := sampleMemento(t)
	if _, err := New(store).Export(ctx, "slot", m); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := New(store).Export(ctx, "slot", m); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	m.Day = 9
	if _, err := New(store, WithOverwrite()).Export(ctx, "slot", m); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := New(store).Import(ctx, "slot")
	if err != nil || got.Day != 9 {
		t.Fatalf("expected overwritten day 9, got %d %v", got.Day, err)
	}
	if _, err := New(store).Export(ctx, "  ", m); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestImportDetectsTampering(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	archive := New(store)
	info, err := archive.Export(ctx, "week1", sampleMemento(t))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	forged := sampleMemento(t)
	forged.Day = 99
	payload, _ := codec.Marshal(forged)
	enc, _ := zstd.NewWriter(nil)
	body := enc.EncodeAll(payload, nil)
	_, err = store.Put(ctx, "week1.sav", bytes.NewReader(body), blob.PutOptions{Metadata: info.Metadata, Overwrite: true})
	if err != nil {
		t.Fatalf("tamper: %v", err)
	}
	if _, err := archive.Import(ctx, "week1"); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestImportFailures(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	archive := New(store)
	if _, err := archive.Import(ctx, "missing"); !errors.Is(err, ErrSaveNotFound) {
		t.Fatalf("expected ErrSaveNotFound, got %v", err)
	}
	_, _ = store.Put(ctx, "future.sav", bytes.NewReader([]byte("x")), blob.PutOptions{Metadata: map[string]string{metaFormat: "2"}})
	if _, err := archive.Import(ctx, "future"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	_, _ = store.Put(ctx, "garbage.sav", bytes.NewReader([]byte("not zstd")), blob.PutOptions{Metadata: map[string]string{metaFormat: FormatVersion}})
	if _, err := archive.Import(ctx, "garbage"); err == nil {
		t.Fatalf("expected decompression error")
	}
	payload := []byte{0xff}
	enc, _ := zstd.NewWriter(nil)
	_, _ = store.Put(ctx, "badcbor.sav", bytes.NewReader(enc.EncodeAll(payload, nil)), blob.PutOptions{
		Metadata: map[string]string{metaFormat: FormatVersion, metaChecksum: Checksum(payload)},
	})
	if _, err := archive.Import(ctx, "badcbor"); err == nil || errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	archive := New(store)
	m := sampleMemento(t)
	for _, key := range []string{"saves/a", "saves/b"} {
		if _, err := archive.Export(ctx, key, m); err != nil {
			t.Fatalf("export %s: %v", key, err)
		}
	}
	_, _ = store.Put(ctx, "saves/readme.txt", bytes.NewReader([]byte("hi")), blob.PutOptions{})
	entries, err := archive.List(ctx, "saves/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "saves/a.sav" || entries[0].Day != 5 || entries[0].Size == 0 {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if ok, err := archive.Delete(ctx, "saves/a"); err != nil || !ok {
		t.Fatalf("expected delete, got %v %v", ok, err)
	}
	entries, _ = archive.List(ctx, "saves/")
	if len(entries) != 1 {
		t.Fatalf("expected one remaining save, got %d", len(entries))
	}
}

func TestKeyForAndChecksum(t *testing.T) {
	cases := map[string]string{"week1": "week1.sav", "week1.sav": "week1.sav", " spring ": "spring.sav", "": ""}
	for in, want := range cases {
		if got := KeyFor(in); got != want {
			t.Fatalf("KeyFor(%q)=%q want %q", in, got, want)
		}
	}
	a, b := Checksum([]byte("nursery")), Checksum([]byte("nursery!"))
	if len(a) != 64 || a == b || a != Checksum([]byte("nursery")) {
		t.Fatalf("unexpected checksums %s %s", a, b)
	}
}
