package save

import (
	"testing"

	"github.com/google/uuid"
)

func TestAssetNames(t *testing.T) {
	tests := []struct {
		kind AssetKind
		name string
	}{
		{AssetDefault, "PB_DefaultBrick"},
		{AssetTile, "PB_DefaultTile"},
		{AssetSmoothTile, "PB_DefaultSmoothTile"},
		{AssetStud, "PB_DefaultStudded"},
		{AssetMicro, "PB_DefaultMicroBrick"},
	}
	for _, tt := range tests {
		got, err := tt.kind.AssetName()
		if err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		if got != tt.name {
			t.Errorf("%s = %q, want %q", tt.kind, got, tt.name)
		}
	}
}

func TestAssetNameUnknown(t *testing.T) {
	if _, err := AssetKind(99).AssetName(); err == nil {
		t.Error("expected error for unknown asset kind")
	}
}

func TestNewDocumentDefaults(t *testing.T) {
	d := NewDocument(nil, []string{"PB_DefaultBrick"})
	if d.Owner.Name != DefaultOwnerName {
		t.Errorf("owner name %q, want %q", d.Owner.Name, DefaultOwnerName)
	}
	if d.Owner.ID == uuid.Nil {
		t.Error("owner id not populated")
	}
	if d.Map == "" {
		t.Error("map name not populated")
	}
	if d.CreatedAt.IsZero() {
		t.Error("creation time not populated")
	}
}

func TestNewDocumentOptions(t *testing.T) {
	id := uuid.MustParse("5a7c0000-0000-4000-8000-000000000001")
	d := NewDocument(nil, nil,
		WithOwner(id, "someone"),
		WithMap("Plateau", "a test save"))
	if d.Owner.ID != id || d.Owner.Name != "someone" {
		t.Errorf("owner = %v/%q", d.Owner.ID, d.Owner.Name)
	}
	if d.Map != "Plateau" || d.Description != "a test save" {
		t.Errorf("map header = %q/%q", d.Map, d.Description)
	}
}
