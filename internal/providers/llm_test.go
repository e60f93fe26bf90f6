package providers

import (
	"context"
	"testing"
)

func TestParseRecords(t *testing.T) {
	raw := "```json\n[{\"name\": \"Accra Skin Clinic\", \"address\": \"Osu\", \"phone\": \"+233 30 000 0000\", \"verified\": true}, {\"name\": \"\"}, {\"name\": \"Ridge Hospital\", \"address\": \"Ridge\", \"phone\": \"+233 30 111 1111\"}]\n```"
	records, err := parseRecords(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "Accra Skin Clinic" || !records[0].Verified {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].Verified {
		t.Fatal("second record should be unverified")
	}
}

func TestParseRecordsGarbage(t *testing.T) {
	if _, err := parseRecords("no providers found"); err == nil {
		t.Fatal("expected an error for non-JSON output")
	}
}

func TestQueryValidation(t *testing.T) {
	d := NewMockDirectory()
	if _, err := d.Search(context.Background(), Query{Location: "Accra"}); err == nil {
		t.Fatal("expected missing specialty to fail")
	}
	if _, err := d.Search(context.Background(), Query{Specialty: "Dermatology"}); err == nil {
		t.Fatal("expected missing location to fail")
	}
	records, err := d.Search(context.Background(), Query{Specialty: "Dermatology", Location: "Accra"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected results")
	}
}
