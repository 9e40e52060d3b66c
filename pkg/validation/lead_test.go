package validation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"shore-hockey/pkg/apperrors"
)

func campInput() map[string]any {
	return map[string]any{
		"playerName":       "Alex",
		"playerAge":        "12",
		"skillLevel":       "beginner",
		"sessionOrProgram": "Summer Camp",
		"parentName":       "Jamie",
		"email":            "jamie@example.com",
		"phone":            "555-123-4567",
		"consentPolicy":    "yes",
		"company":          "",
	}
}

func businessInput() map[string]any {
	return map[string]any{
		"name":          "Pat Smith",
		"email":         "pat@club.org",
		"interest":      "Private lessons",
		"consentPolicy": "YES",
	}
}

func requireAppError(t *testing.T, err error, code apperrors.Code, field string) {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperrors.Error, got %v", err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
	if appErr.Field != field {
		t.Fatalf("expected field %q, got %q", field, appErr.Field)
	}
}

func TestValidateCampLead_Valid(t *testing.T) {
	lead, err := ValidateCampLead(campInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.PlayerAge != 12 {
		t.Fatalf("expected age 12, got %d", lead.PlayerAge)
	}
	if lead.SourcePage != "/" {
		t.Fatalf("expected default source page, got %q", lead.SourcePage)
	}
	if lead.ConsentPolicy != "yes" {
		t.Fatalf("expected consent yes, got %q", lead.ConsentPolicy)
	}
	if lead.Message != "" || lead.UTMSource != "" {
		t.Fatalf("expected optional fields to normalize to empty strings")
	}
}

func TestValidateCampLead_MissingRequiredFieldNamesThatField(t *testing.T) {
	for _, field := range []string{"playerName", "playerAge", "skillLevel", "sessionOrProgram", "parentName", "email", "phone"} {
		t.Run(field, func(t *testing.T) {
			in := campInput()
			delete(in, field)
			_, err := ValidateCampLead(in)
			requireAppError(t, err, apperrors.CodeValidation, field)
		})
	}
}

func TestValidateCampLead_BlankAfterTrimIsMissing(t *testing.T) {
	in := campInput()
	in["parentName"] = "   "
	_, err := ValidateCampLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "parentName")
}

func TestValidateCampLead_FirstMissingFieldWins(t *testing.T) {
	in := campInput()
	delete(in, "email")
	delete(in, "skillLevel")
	_, err := ValidateCampLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "skillLevel")
}

func TestValidateCampLead_HoneypotBeatsEverything(t *testing.T) {
	_, err := ValidateCampLead(map[string]any{"company": "Acme Bots"})
	requireAppError(t, err, apperrors.CodeSpam, "company")

	_, err = ValidateBusinessLead(map[string]any{"company": " x "})
	requireAppError(t, err, apperrors.CodeSpam, "company")
}

func TestValidateCampLead_AgeBounds(t *testing.T) {
	cases := []struct {
		age any
		ok  bool
	}{
		{"5", true},
		{"20", true},
		{" 12 ", true},
		{"12.0", true},
		{json.Number("7"), true},
		{float64(9), true},
		{"4", false},
		{"21", false},
		{"12.5", false},
		{"twelve", false},
		{"NaN", false},
		{"Inf", false},
	}
	for _, tc := range cases {
		in := campInput()
		in["playerAge"] = tc.age
		lead, err := ValidateCampLead(in)
		if tc.ok {
			if err != nil {
				t.Fatalf("age %v: unexpected error %v", tc.age, err)
			}
			if lead.PlayerAge < 5 || lead.PlayerAge > 20 {
				t.Fatalf("age %v: parsed out of range: %d", tc.age, lead.PlayerAge)
			}
			continue
		}
		requireAppError(t, err, apperrors.CodeValidation, "playerAge")
	}
}

func TestValidateCampLead_FormatCheckOrder(t *testing.T) {
	in := campInput()
	in["email"] = "a@b"
	in["phone"] = "123"
	in["playerAge"] = "30"
	in["skillLevel"] = "pro"
	_, err := ValidateCampLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "email")

	in["email"] = "a@b.co"
	_, err = ValidateCampLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "phone")

	in["phone"] = "(555) 123 4567"
	_, err = ValidateCampLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "playerAge")

	in["playerAge"] = "15"
	_, err = ValidateCampLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "skillLevel")

	in["skillLevel"] = "elite"
	delete(in, "consentPolicy")
	_, err = ValidateCampLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "consentPolicy")
}

func TestValidateCampLead_ProgramAliases(t *testing.T) {
	in := campInput()
	delete(in, "sessionOrProgram")
	in["session"] = "Week 2"
	lead, err := ValidateCampLead(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.SessionOrProgram != "Week 2" {
		t.Fatalf("expected session alias, got %q", lead.SessionOrProgram)
	}
}

func TestValidateCampLead_Idempotent(t *testing.T) {
	in := campInput()
	in["utm_source"] = " newsletter "
	first, err := ValidateCampLead(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ValidateCampLead(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical records, got %+v and %+v", first, second)
	}
	if in["utm_source"] != " newsletter " {
		t.Fatalf("input was mutated")
	}
}

func TestValidateBusinessLead_Valid(t *testing.T) {
	lead, err := ValidateBusinessLead(businessInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.CalendlyClicked != "no" {
		t.Fatalf("expected calendlyClicked default no, got %q", lead.CalendlyClicked)
	}
	if lead.Phone != "" {
		t.Fatalf("expected empty phone, got %q", lead.Phone)
	}
	if lead.ConsentPolicy != "yes" {
		t.Fatalf("expected normalized consent, got %q", lead.ConsentPolicy)
	}
}

func TestValidateBusinessLead_CalendlyNormalization(t *testing.T) {
	for in, want := range map[string]string{"Yes": "yes", "no": "no", "maybe": "no", "": "no"} {
		input := businessInput()
		input["calendlyClicked"] = in
		lead, err := ValidateBusinessLead(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lead.CalendlyClicked != want {
			t.Fatalf("calendlyClicked %q: expected %q, got %q", in, want, lead.CalendlyClicked)
		}
	}
}

func TestValidateBusinessLead_OptionalPhoneStillChecked(t *testing.T) {
	in := businessInput()
	in["phone"] = "555-1234"
	_, err := ValidateBusinessLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "phone")
}

func TestValidateBusinessLead_RequiredOrder(t *testing.T) {
	_, err := ValidateBusinessLead(map[string]any{})
	requireAppError(t, err, apperrors.CodeValidation, "name")

	in := businessInput()
	delete(in, "interest")
	_, err = ValidateBusinessLead(in)
	requireAppError(t, err, apperrors.CodeValidation, "interest")
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@example.com", "x+y@sub.domain.io"}
	invalid := []string{"a@b", "a b@c.de", "@b.co", "a@.co", "a@@b.co", "plain",
		"ja\u00a0mie@example.com", "jamie@exa\u2003mple.com", "jamie@example.c\u2028om", "\ufeffjamie@example.com"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Fatalf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Fatalf("expected %q to be invalid", e)
		}
	}
}

func TestCleanString_NonScalarsAreEmpty(t *testing.T) {
	for _, v := range []any{nil, map[string]any{"a": 1}, []any{"x"}} {
		if got := cleanString(v); got != "" {
			t.Fatalf("expected empty for %#v, got %q", v, got)
		}
	}
}
