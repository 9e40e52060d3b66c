package models

import (
	"testing"
	"time"
)

func TestFields_MarshalJSONKeepsOrder(t *testing.T) {
	f := Fields{{"zeta", "z"}, {"alpha", 1}, {"mid", ""}}

	got, err := f.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":"z","alpha":1,"mid":""}`
	if string(got) != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCampLead_FieldsCanonicalLayout(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 5, 9, 123000000, time.FixedZone("EST", -5*3600))
	lead := CampLead{PlayerName: "Alex", PlayerAge: 12, SourcePage: "/"}

	fields := lead.Fields(ts)

	wantKeys := []string{
		"timestamp", "source_page", "player_name", "player_age", "skill_level",
		"session_or_program", "parent_name", "email", "phone", "message",
		"utm_source", "utm_medium", "utm_campaign", "consent_policy",
	}
	if len(fields) != len(wantKeys) {
		t.Fatalf("expected %d fields, got %d", len(wantKeys), len(fields))
	}
	for i, k := range wantKeys {
		if fields[i].Key != k {
			t.Fatalf("field %d: expected %q, got %q", i, k, fields[i].Key)
		}
	}

	if v, _ := fields.Get("timestamp"); v != "2026-03-01T19:05:09.123Z" {
		t.Fatalf("unexpected timestamp %v", v)
	}
	if v, _ := fields.Get("player_age"); v != 12 {
		t.Fatalf("expected numeric age 12, got %#v", v)
	}
	if v, _ := fields.Get("message"); v != "" {
		t.Fatalf("expected empty optional field to be kept, got %#v", v)
	}
}

func TestBusinessLead_FieldsCanonicalLayout(t *testing.T) {
	lead := BusinessLead{Name: "Pat", CalendlyClicked: "no"}

	fields := lead.Fields(time.Unix(0, 0))
	if len(fields) != 13 {
		t.Fatalf("expected 13 fields, got %d", len(fields))
	}
	if fields[11].Key != "calendly_clicked" || fields[11].Value != "no" {
		t.Fatalf("unexpected calendly field %#v", fields[11])
	}
	if _, ok := fields.Get("player_age"); ok {
		t.Fatalf("business record must not carry camp fields")
	}
}
