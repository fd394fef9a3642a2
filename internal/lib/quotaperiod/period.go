// Package quotaperiod содержит функции для работы с периодом квоты —
// ключом (месяц, год), которым ограничивается счётчик использований пользователя.
package quotaperiod

import (
	"time"
)

// Current возвращает месяц и год текущего периода квоты в UTC.
func Current(now time.Time) (month, year int) {
	now = now.UTC()
	return int(now.Month()), now.Year()
}

// NextReset возвращает момент начала следующего периода квоты:
// первое число следующего месяца, 00:00 UTC.
func NextReset(now time.Time) time.Time {
	now = now.UTC()
	if now.Month() == time.December {
		return time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// MinuteKey возвращает строковый ключ текущей минуты для счётчиков rate limit.
func MinuteKey(now time.Time) string {
	return now.UTC().Format("2006-01-02-15-04")
}
