package domain

import "time"

// DateLayout is the wire format for ledger calendar dates.
const DateLayout = "2006-01-02"

// AuditFields holds standard audit information for domain entities.
// CreatedBy and LastUpdatedBy hold the staff user ID taken from the bearer token.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Touch stamps the update half of the audit fields.
func (a *AuditFields) Touch(userID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
}

// NewAuditFields returns audit fields for an entity created now by userID.
func NewAuditFields(userID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

// CalendarDate truncates t to midnight UTC. Ledger entries carry no time-of-day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseCalendarDate parses a YYYY-MM-DD string.
func ParseCalendarDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return CalendarDate(t), nil
}
