package services

import (
	"testing"

	"kopeika/internal/testutil"
)

func TestCreateMapping(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTitleMappingService(db)

		mapping, err := svc.CreateMapping("STARBUCKS #1234 SEATTLE WA", "Starbucks")
		testutil.AssertNoError(t, err)

		if mapping.ID == 0 {
			t.Fatal("expected non-zero mapping ID")
		}
	})

	t.Run("duplicate_source", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTitleMappingService(db)

		_, err := svc.CreateMapping("STARBUCKS #1234", "Starbucks")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateMapping("STARBUCKS #1234", "Coffee")
		testutil.AssertAppError(t, err, "DUPLICATE_TITLE_MAPPING")
	})

	t.Run("empty_titles", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTitleMappingService(db)

		_, err := svc.CreateMapping("", "Starbucks")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateMapping("STARBUCKS #1234", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteMapping(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTitleMappingService(db)
		mapping := testutil.CreateTestTitleMapping(t, db, "SRC", "Canonical")

		err := svc.DeleteMapping(mapping.ID)
		testutil.AssertNoError(t, err)

		mappings, err := svc.ListMappings()
		testutil.AssertNoError(t, err)
		if len(mappings) != 0 {
			t.Errorf("expected no mappings, got %d", len(mappings))
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTitleMappingService(db)

		err := svc.DeleteMapping(99999)
		testutil.AssertAppError(t, err, "TITLE_MAPPING_NOT_FOUND")
	})
}

func TestMappedTitle(t *testing.T) {
	aliases := map[string]string{
		"STARBUCKS #1234": "Starbucks",
		"AMZN Mktp":       "Amazon",
	}

	t.Run("known_source", func(t *testing.T) {
		if got := MappedTitle("STARBUCKS #1234", aliases); got != "Starbucks" {
			t.Errorf("expected 'Starbucks', got %q", got)
		}
	})

	t.Run("unknown_source_passes_through", func(t *testing.T) {
		if got := MappedTitle("Local Cafe", aliases); got != "Local Cafe" {
			t.Errorf("expected pass-through, got %q", got)
		}
	})

	t.Run("lookup_is_case_sensitive", func(t *testing.T) {
		if got := MappedTitle("starbucks #1234", aliases); got != "starbucks #1234" {
			t.Errorf("expected pass-through for different case, got %q", got)
		}
	})
}

func TestAliasTable(t *testing.T) {
	t.Run("loads_all_mappings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTitleMappingService(db)

		testutil.CreateTestTitleMapping(t, db, "SRC A", "Canonical A")
		testutil.CreateTestTitleMapping(t, db, "SRC B", "Canonical A")

		table, err := svc.AliasTable()
		testutil.AssertNoError(t, err)

		if len(table) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(table))
		}
		if table["SRC A"] != "Canonical A" || table["SRC B"] != "Canonical A" {
			t.Errorf("unexpected table contents: %v", table)
		}
	})
}
