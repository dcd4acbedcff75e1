package helpers

import "time"

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
)

// FormatDate renders a timestamp as a short date for list views.
func FormatDate(t time.Time) string {
	return t.Local().Format(dateLayout)
}

// FormatDateTime renders a timestamp with time of day for detail views.
func FormatDateTime(t time.Time) string {
	return t.Local().Format(dateTimeLayout)
}
