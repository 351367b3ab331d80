package hashing

import (
	"testing"

	"github.com/mmrzaf/dbfill/internal/domain"
)

func sampleConfig() *domain.GenerationConfig {
	min, max := 1.0, 100.0
	return &domain.GenerationConfig{
		ID:      "c1",
		Name:    "people",
		Version: "1",
		Tables: []domain.TableSpec{
			{
				Name: "person",
				Rows: 50,
				Columns: []domain.ColumnSpec{
					{Name: "id", ColumnType: "int", Identity: true, IdentitySeed: 1, IdentityIncr: 1},
					{Name: "age", ColumnType: "tinyint", MinValue: &min, MaxValue: &max},
					{Name: "city", ColumnType: "nvarchar", MaskingType: "Address", SubType: "City"},
				},
			},
		},
	}
}

func TestHashConfigIsStable(t *testing.T) {
	a, err := HashConfig(sampleConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashConfig(sampleConfig())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", a)
	}
}

func TestHashConfigChangesWithContent(t *testing.T) {
	base, err := HashConfig(sampleConfig())
	if err != nil {
		t.Fatal(err)
	}

	changed := sampleConfig()
	changed.Tables[0].Rows = 51
	other, err := HashConfig(changed)
	if err != nil {
		t.Fatal(err)
	}
	if base == other {
		t.Fatal("expected row-count change to change the hash")
	}

	changed = sampleConfig()
	changed.Tables[0].Columns[2].SubType = "State"
	other, err = HashConfig(changed)
	if err != nil {
		t.Fatal(err)
	}
	if base == other {
		t.Fatal("expected subtype change to change the hash")
	}
}

func TestHashConfigIgnoresSeed(t *testing.T) {
	base, err := HashConfig(sampleConfig())
	if err != nil {
		t.Fatal(err)
	}
	seeded := sampleConfig()
	s := int64(42)
	seeded.Seed = &s
	other, err := HashConfig(seeded)
	if err != nil {
		t.Fatal(err)
	}
	if base != other {
		t.Fatal("seed is run input, not config identity; hash must not change")
	}
}
