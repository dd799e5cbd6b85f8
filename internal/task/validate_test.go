package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedValidator() Validator {
	return Validator{Now: func() time.Time { return fixedNow }}
}

func validDraft() Draft {
	return Draft{
		Title:         "Buy milk",
		Description:   "Two litres, semi-skimmed",
		Location:      "Corner shop",
		ExecutionDate: fixedNow.Add(time.Hour),
	}
}

func TestValidate_RuleOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
		want   Rule
	}{
		{
			name:   "empty title and description reports title",
			mutate: func(d *Draft) { d.Title = ""; d.Description = "" },
			want:   RuleTitleRequired,
		},
		{
			name:   "whitespace title",
			mutate: func(d *Draft) { d.Title = "   \t" },
			want:   RuleTitleRequired,
		},
		{
			name:   "empty description and location reports description",
			mutate: func(d *Draft) { d.Description = " "; d.Location = "" },
			want:   RuleDescriptionRequired,
		},
		{
			name:   "empty location with past date reports location",
			mutate: func(d *Draft) { d.Location = ""; d.ExecutionDate = fixedNow.Add(-time.Hour) },
			want:   RuleLocationRequired,
		},
		{
			name:   "past date",
			mutate: func(d *Draft) { d.ExecutionDate = fixedNow.Add(-time.Nanosecond) },
			want:   RuleExecutionDatePast,
		},
		{
			name:   "zero date is in the past",
			mutate: func(d *Draft) { d.ExecutionDate = time.Time{} },
			want:   RuleExecutionDatePast,
		},
		{
			name:   "title too long",
			mutate: func(d *Draft) { d.Title = strings.Repeat("a", MaxTitleLen+1) },
			want:   RuleTitleTooLong,
		},
		{
			name:   "description too long",
			mutate: func(d *Draft) { d.Description = strings.Repeat("b", MaxDescriptionLen+1) },
			want:   RuleDescriptionTooLong,
		},
		{
			name:   "location too long",
			mutate: func(d *Draft) { d.Location = strings.Repeat("c", MaxLocationLen+1) },
			want:   RuleLocationTooLong,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)

			_, err := fixedValidator().Validate(d)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.want, verr.Rule)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestValidate_DateBoundary(t *testing.T) {
	d := validDraft()
	d.ExecutionDate = fixedNow

	got, err := fixedValidator().Validate(d)
	require.NoError(t, err, "a date equal to now is accepted")
	assert.True(t, got.ExecutionDate.Equal(fixedNow))

	d.ExecutionDate = fixedNow.Add(-time.Millisecond)
	_, err = fixedValidator().Validate(d)
	require.Error(t, err)
}

func TestValidate_TrimsFields(t *testing.T) {
	d := validDraft()
	d.Title = "  Call plumber \n"
	d.Description = "\tkitchen sink "
	d.Location = " home "

	got, err := fixedValidator().Validate(d)
	require.NoError(t, err)
	assert.Equal(t, "Call plumber", got.Title)
	assert.Equal(t, "kitchen sink", got.Description)
	assert.Equal(t, "home", got.Location)
}

func TestValidate_LimitsCountRunes(t *testing.T) {
	d := validDraft()
	d.Title = strings.Repeat("ж", MaxTitleLen)

	_, err := fixedValidator().Validate(d)
	assert.NoError(t, err)
}
