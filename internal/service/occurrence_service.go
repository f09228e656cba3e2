// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/domain/models"
)

// OccurrenceService derives recurrence information from a meeting's repeat
// fields. It is stateless.
type OccurrenceService struct{}

// NewOccurrenceService creates a new OccurrenceService.
func NewOccurrenceService() *OccurrenceService {
	return &OccurrenceService{}
}

var weekdayRules = []struct {
	flag    func(models.Weekdays) bool
	weekday rrule.Weekday
}{
	{func(w models.Weekdays) bool { return w.Monday }, rrule.MO},
	{func(w models.Weekdays) bool { return w.Tuesday }, rrule.TU},
	{func(w models.Weekdays) bool { return w.Wednesday }, rrule.WE},
	{func(w models.Weekdays) bool { return w.Thursday }, rrule.TH},
	{func(w models.Weekdays) bool { return w.Friday }, rrule.FR},
	{func(w models.Weekdays) bool { return w.Saturday }, rrule.SA},
	{func(w models.Weekdays) bool { return w.Sunday }, rrule.SU},
}

// rule builds the recurrence rule for a repeating meeting.
func (s *OccurrenceService) rule(meeting *models.Meeting) (*rrule.RRule, error) {
	option := rrule.ROption{Dtstart: meeting.StartTime.UTC()}

	switch meeting.RepeatOn {
	case models.RepeatDaily:
		option.Freq = rrule.DAILY
	case models.RepeatWeekly:
		option.Freq = rrule.WEEKLY
		for _, wr := range weekdayRules {
			if wr.flag(meeting.Weekdays) {
				option.Byweekday = append(option.Byweekday, wr.weekday)
			}
		}
	case models.RepeatMonthly:
		option.Freq = rrule.MONTHLY
	default:
		return nil, domain.NewValidationError("unknown repeat frequency: " + string(meeting.RepeatOn))
	}

	if meeting.RepeatTill != nil {
		option.Until = meeting.RepeatTill.UTC()
	}

	return rrule.NewRRule(option)
}

// RRuleText returns the RFC 5545 RRULE string for a repeating meeting, or
// empty for a one-off meeting.
func (s *OccurrenceService) RRuleText(meeting *models.Meeting) (string, error) {
	if !meeting.RepeatThisMeeting {
		return "", nil
	}
	rule, err := s.rule(meeting)
	if err != nil {
		return "", err
	}
	return rule.String(), nil
}

// NextOccurrence returns the first occurrence strictly after the given time.
// The second return is false when the recurrence has no further occurrences
// or the meeting does not repeat.
func (s *OccurrenceService) NextOccurrence(meeting *models.Meeting, after time.Time) (time.Time, bool) {
	if !meeting.RepeatThisMeeting {
		return time.Time{}, false
	}
	rule, err := s.rule(meeting)
	if err != nil {
		return time.Time{}, false
	}
	next := rule.After(after.UTC(), false)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// RecurrenceExpired reports whether a repeating meeting's repeat-till date
// has passed. The comparison is at date granularity and strict: a meeting
// whose repeat_till is today has not expired, and a nil repeat_till never
// expires.
func (s *OccurrenceService) RecurrenceExpired(meeting *models.Meeting, now time.Time) bool {
	if !meeting.RepeatThisMeeting || meeting.RepeatTill == nil {
		return false
	}
	till := meeting.RepeatTill.UTC()
	tillDate := time.Date(till.Year(), till.Month(), till.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return tillDate.Before(today)
}
