// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/meet-service/internal/domain/models"
	"github.com/docuflow/meet-service/pkg/utils"
)

func TestOccurrenceServiceRRuleText(t *testing.T) {
	service := NewOccurrenceService()
	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC) // a Monday

	t.Run("non-repeating meeting has no rule", func(t *testing.T) {
		meeting := &models.Meeting{StartTime: start}
		rule, err := service.RRuleText(meeting)
		require.NoError(t, err)
		assert.Empty(t, rule)
	})

	t.Run("daily", func(t *testing.T) {
		meeting := &models.Meeting{
			StartTime:         start,
			RepeatThisMeeting: true,
			RepeatOn:          models.RepeatDaily,
		}
		rule, err := service.RRuleText(meeting)
		require.NoError(t, err)
		assert.Contains(t, rule, "FREQ=DAILY")
	})

	t.Run("weekly with weekdays and until", func(t *testing.T) {
		meeting := &models.Meeting{
			StartTime:         start,
			RepeatThisMeeting: true,
			RepeatOn:          models.RepeatWeekly,
			RepeatTill:        utils.TimePtr(start.AddDate(0, 1, 0)),
			Weekdays:          models.Weekdays{Monday: true, Wednesday: true},
		}
		rule, err := service.RRuleText(meeting)
		require.NoError(t, err)
		assert.Contains(t, rule, "FREQ=WEEKLY")
		assert.Contains(t, rule, "MO")
		assert.Contains(t, rule, "WE")
		assert.Contains(t, rule, "UNTIL=")
	})

	t.Run("unknown frequency fails", func(t *testing.T) {
		meeting := &models.Meeting{
			StartTime:         start,
			RepeatThisMeeting: true,
			RepeatOn:          models.RepeatFrequency("Fortnightly"),
		}
		_, err := service.RRuleText(meeting)
		assert.Error(t, err)
	})
}

func TestOccurrenceServiceNextOccurrence(t *testing.T) {
	service := NewOccurrenceService()
	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

	meeting := &models.Meeting{
		StartTime:         start,
		RepeatThisMeeting: true,
		RepeatOn:          models.RepeatDaily,
	}

	next, ok := service.NextOccurrence(meeting, start)
	require.True(t, ok)
	assert.Equal(t, start.AddDate(0, 0, 1), next)

	t.Run("no occurrences after until", func(t *testing.T) {
		bounded := &models.Meeting{
			StartTime:         start,
			RepeatThisMeeting: true,
			RepeatOn:          models.RepeatDaily,
			RepeatTill:        utils.TimePtr(start.AddDate(0, 0, 2)),
		}
		_, ok := service.NextOccurrence(bounded, start.AddDate(0, 0, 5))
		assert.False(t, ok)
	})

	t.Run("one-off meeting has none", func(t *testing.T) {
		_, ok := service.NextOccurrence(&models.Meeting{StartTime: start}, start)
		assert.False(t, ok)
	})
}

func TestOccurrenceServiceRecurrenceExpired(t *testing.T) {
	service := NewOccurrenceService()
	now := time.Date(2024, 5, 6, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		meeting *models.Meeting
		expired bool
	}{
		{
			name:    "one-off meeting never expires",
			meeting: &models.Meeting{RepeatTill: utils.TimePtr(now.AddDate(0, 0, -7))},
			expired: false,
		},
		{
			name: "nil repeat_till never expires",
			meeting: &models.Meeting{
				RepeatThisMeeting: true,
				RepeatOn:          models.RepeatDaily,
			},
			expired: false,
		},
		{
			name: "repeat_till yesterday is expired",
			meeting: &models.Meeting{
				RepeatThisMeeting: true,
				RepeatOn:          models.RepeatDaily,
				RepeatTill:        utils.TimePtr(now.AddDate(0, 0, -1)),
			},
			expired: true,
		},
		{
			name: "repeat_till today is not expired",
			meeting: &models.Meeting{
				RepeatThisMeeting: true,
				RepeatOn:          models.RepeatDaily,
				RepeatTill:        utils.TimePtr(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)),
			},
			expired: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, service.RecurrenceExpired(tc.meeting, now))
		})
	}
}
