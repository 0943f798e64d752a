// Package month содержит календарную арифметику для периодов подписки.
package month

import (
	"time"
)

// AddMonths прибавляет n месяцев к t. Если в целевом месяце нет такого дня,
// дата прижимается к последнему дню месяца: 31 января + 1 месяц = 28/29 февраля.
// Время суток и часовой пояс сохраняются.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

// RemainingMonths считает, сколько месяцев подписки осталось на момент at.
// Неполный месяц считается целым. До начала подписки возвращает полный срок,
// после окончания 0.
func RemainingMonths(start, expiry, at time.Time) int {
	if !at.Before(expiry) {
		return 0
	}
	from := at
	if at.Before(start) {
		from = start
	}

	n := 0
	for AddMonths(from, n).Before(expiry) {
		n++
	}
	return n
}
