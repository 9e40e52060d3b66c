package models

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// TimestampLayout is the ISO-8601 form used for lead and health timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Campaign carries the optional UTM attribution shared by both forms.
type Campaign struct {
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
}

// CampLead is a validated camp inquiry.
type CampLead struct {
	SourcePage       string
	PlayerName       string
	PlayerAge        int
	SkillLevel       string
	SessionOrProgram string
	ParentName       string
	Email            string
	Phone            string
	Message          string
	ConsentPolicy    string
	Campaign
}

// BusinessLead is a validated general business inquiry.
type BusinessLead struct {
	SourcePage      string
	Name            string
	Email           string
	Phone           string
	PlayerInfo      string
	Interest        string
	Message         string
	CalendlyClicked string
	ConsentPolicy   string
	Campaign
}

// Field is one named value of a lead record.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered set of record fields. It encodes as a JSON object
// with keys in slice order, so Airtable and the notification email always
// see the same canonical layout.
type Fields []Field

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Fields returns the Airtable record for a camp lead submitted at ts.
func (l CampLead) Fields(ts time.Time) Fields {
	return Fields{
		{"timestamp", ts.UTC().Format(TimestampLayout)},
		{"source_page", l.SourcePage},
		{"player_name", l.PlayerName},
		{"player_age", l.PlayerAge},
		{"skill_level", l.SkillLevel},
		{"session_or_program", l.SessionOrProgram},
		{"parent_name", l.ParentName},
		{"email", l.Email},
		{"phone", l.Phone},
		{"message", l.Message},
		{"utm_source", l.UTMSource},
		{"utm_medium", l.UTMMedium},
		{"utm_campaign", l.UTMCampaign},
		{"consent_policy", l.ConsentPolicy},
	}
}

// Fields returns the Airtable record for a business lead submitted at ts.
func (l BusinessLead) Fields(ts time.Time) Fields {
	return Fields{
		{"timestamp", ts.UTC().Format(TimestampLayout)},
		{"source_page", l.SourcePage},
		{"name", l.Name},
		{"email", l.Email},
		{"phone", l.Phone},
		{"player_info", l.PlayerInfo},
		{"interest", l.Interest},
		{"message", l.Message},
		{"utm_source", l.UTMSource},
		{"utm_medium", l.UTMMedium},
		{"utm_campaign", l.UTMCampaign},
		{"calendly_clicked", l.CalendlyClicked},
		{"consent_policy", l.ConsentPolicy},
	}
}
