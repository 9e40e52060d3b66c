// Package validation turns raw form input into validated lead records.
//
// Checks run in a fixed order and the first failure is reported:
// honeypot, required fields, format checks, consent.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"shore-hockey/pkg/apperrors"
	"shore-hockey/pkg/models"
)

const (
	HoneypotField = "company"
	ConsentField  = "consentPolicy"

	minPlayerAge   = 5
	maxPlayerAge   = 20
	minPhoneDigits = 10
)

var (
	emailPattern = regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}@]+@[^\s\p{Z}\x{FEFF}@]+\.[^\s\p{Z}\x{FEFF}@]+$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)

	skillLevels = map[string]bool{
		"beginner":     true,
		"intermediate": true,
		"advanced":     true,
		"elite":        true,
	}
)

type requirement struct {
	field   string
	value   string
	message string
}

// ValidateCampLead validates a camp inquiry. The returned error is always an
// *apperrors.Error.
func ValidateCampLead(input map[string]any) (models.CampLead, error) {
	if err := checkHoneypot(input); err != nil {
		return models.CampLead{}, err
	}

	lead := models.CampLead{
		SourcePage:       sourcePage(input),
		PlayerName:       cleanString(input["playerName"]),
		SkillLevel:       cleanString(input["skillLevel"]),
		SessionOrProgram: firstNonEmpty(input, "sessionOrProgram", "program", "session"),
		ParentName:       cleanString(input["parentName"]),
		Email:            cleanString(input["email"]),
		Phone:            cleanString(input["phone"]),
		Message:          cleanString(input["message"]),
		Campaign:         campaign(input),
	}
	ageRaw := cleanString(input["playerAge"])

	if err := checkRequired([]requirement{
		{"playerName", lead.PlayerName, "Player name is required."},
		{"playerAge", ageRaw, "Player age is required."},
		{"skillLevel", lead.SkillLevel, "Skill level is required."},
		{"sessionOrProgram", lead.SessionOrProgram, "Program or session selection is required."},
		{"parentName", lead.ParentName, "Parent or guardian name is required."},
		{"email", lead.Email, "Email is required."},
		{"phone", lead.Phone, "Phone number is required."},
	}); err != nil {
		return models.CampLead{}, err
	}

	if !IsValidEmail(lead.Email) {
		return models.CampLead{}, apperrors.Validation("email", "Enter a valid email address.")
	}
	if !IsValidPhone(lead.Phone) {
		return models.CampLead{}, apperrors.Validation("phone", "Enter a valid phone number.")
	}
	age, ok := parseAge(ageRaw)
	if !ok {
		return models.CampLead{}, apperrors.Validation("playerAge",
			fmt.Sprintf("Player age must be between %d and %d.", minPlayerAge, maxPlayerAge))
	}
	lead.PlayerAge = age
	if !skillLevels[lead.SkillLevel] {
		return models.CampLead{}, apperrors.Validation("skillLevel", "Select a valid skill level.")
	}

	consent, err := checkConsent(input)
	if err != nil {
		return models.CampLead{}, err
	}
	lead.ConsentPolicy = consent

	return lead, nil
}

// ValidateBusinessLead validates a business inquiry. Phone is optional but
// must still look like a phone number when given.
func ValidateBusinessLead(input map[string]any) (models.BusinessLead, error) {
	if err := checkHoneypot(input); err != nil {
		return models.BusinessLead{}, err
	}

	lead := models.BusinessLead{
		SourcePage:      sourcePage(input),
		Name:            cleanString(input["name"]),
		Email:           cleanString(input["email"]),
		Phone:           cleanString(input["phone"]),
		PlayerInfo:      cleanString(input["playerInfo"]),
		Interest:        cleanString(input["interest"]),
		Message:         cleanString(input["message"]),
		CalendlyClicked: "no",
		Campaign:        campaign(input),
	}
	if strings.ToLower(cleanString(input["calendlyClicked"])) == "yes" {
		lead.CalendlyClicked = "yes"
	}

	if err := checkRequired([]requirement{
		{"name", lead.Name, "Name is required."},
		{"email", lead.Email, "Email is required."},
		{"interest", lead.Interest, "Area of interest is required."},
	}); err != nil {
		return models.BusinessLead{}, err
	}

	if !IsValidEmail(lead.Email) {
		return models.BusinessLead{}, apperrors.Validation("email", "Enter a valid email address.")
	}
	if lead.Phone != "" && !IsValidPhone(lead.Phone) {
		return models.BusinessLead{}, apperrors.Validation("phone", "Enter a valid phone number.")
	}

	consent, err := checkConsent(input)
	if err != nil {
		return models.BusinessLead{}, err
	}
	lead.ConsentPolicy = consent

	return lead, nil
}

// IsValidEmail accepts the loose local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone requires at least ten digits once formatting is stripped.
func IsValidPhone(phone string) bool {
	return len(nonDigits.ReplaceAllString(phone, "")) >= minPhoneDigits
}

func checkHoneypot(input map[string]any) error {
	if cleanString(input[HoneypotField]) != "" {
		return apperrors.Spam(HoneypotField)
	}
	return nil
}

func checkRequired(reqs []requirement) error {
	for _, r := range reqs {
		if r.value == "" {
			return apperrors.Validation(r.field, r.message)
		}
	}
	return nil
}

func checkConsent(input map[string]any) (string, error) {
	if strings.ToLower(cleanString(input[ConsentField])) != "yes" {
		return "", apperrors.Validation(ConsentField, "You must agree to the Privacy Policy and Terms to submit.")
	}
	return "yes", nil
}

// parseAge accepts any finite whole number in range, including "12.0" and " 12 ".
func parseAge(raw string) (int, bool) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	if n != math.Trunc(n) || n < minPlayerAge || n > maxPlayerAge {
		return 0, false
	}
	return int(n), true
}

func sourcePage(input map[string]any) string {
	if p := cleanString(input["sourcePage"]); p != "" {
		return p
	}
	return "/"
}

func campaign(input map[string]any) models.Campaign {
	return models.Campaign{
		UTMSource:   cleanString(input["utm_source"]),
		UTMMedium:   cleanString(input["utm_medium"]),
		UTMCampaign: cleanString(input["utm_campaign"]),
	}
}

func firstNonEmpty(input map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := cleanString(input[k]); v != "" {
			return v
		}
	}
	return ""
}

// cleanString trims string input. Numbers and booleans are accepted in their
// textual form; anything else (objects, arrays, null) counts as empty.
func cleanString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
