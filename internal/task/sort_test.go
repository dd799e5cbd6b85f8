package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC)
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSort_ByDate(t *testing.T) {
	in := []Task{
		{ID: "03", ExecutionDate: day(3)},
		{ID: "01", ExecutionDate: day(1)},
		{ID: "02", ExecutionDate: day(2)},
	}

	assert.Equal(t, []string{"01", "02", "03"}, ids(Sort(in, SortConfig{Field: SortByDate, Direction: Asc})))
	assert.Equal(t, []string{"03", "02", "01"}, ids(Sort(in, SortConfig{Field: SortByDate, Direction: Desc})))
	assert.Equal(t, []string{"03", "01", "02"}, ids(in), "input must not be reordered")
}

func TestSort_StableOnTies(t *testing.T) {
	in := []Task{
		{ID: "first", ExecutionDate: day(5), Status: StatusPending},
		{ID: "early", ExecutionDate: day(1), Status: StatusPending},
		{ID: "second", ExecutionDate: day(5), Status: StatusPending},
	}

	asc := Sort(in, SortConfig{Field: SortByDate, Direction: Asc})
	assert.Equal(t, []string{"early", "first", "second"}, ids(asc))

	desc := Sort(in, SortConfig{Field: SortByDate, Direction: Desc})
	assert.Equal(t, []string{"first", "second", "early"}, ids(desc))

	byStatus := Sort(in, SortConfig{Field: SortByStatus, Direction: Desc})
	assert.Equal(t, []string{"first", "early", "second"}, ids(byStatus))
}

func TestSort_ByStatusRank(t *testing.T) {
	in := []Task{
		{ID: "c", Status: StatusCancelled},
		{ID: "d", Status: StatusCompleted},
		{ID: "p", Status: StatusPending},
		{ID: "i", Status: StatusInProgress},
	}

	asc := Sort(in, SortConfig{Field: SortByStatus, Direction: Asc})
	assert.Equal(t, []string{"d", "i", "p", "c"}, ids(asc))

	desc := Sort(in, SortConfig{Field: SortByStatus, Direction: Desc})
	assert.Equal(t, []string{"c", "p", "i", "d"}, ids(desc))
}

func TestSort_Empty(t *testing.T) {
	assert.Empty(t, Sort(nil, DefaultSort))
}

func TestSortConfig_Toggle(t *testing.T) {
	tests := []struct {
		name  string
		from  SortConfig
		field SortField
		want  SortConfig
	}{
		{"same field desc flips", SortConfig{SortByDate, Desc}, SortByDate, SortConfig{SortByDate, Asc}},
		{"same field asc flips", SortConfig{SortByDate, Asc}, SortByDate, SortConfig{SortByDate, Desc}},
		{"new field resets to desc", SortConfig{SortByDate, Asc}, SortByStatus, SortConfig{SortByStatus, Desc}},
		{"new field from desc stays desc", SortConfig{SortByStatus, Desc}, SortByDate, SortConfig{SortByDate, Desc}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.Toggle(tc.field))
		})
	}
}

func TestParseSortFieldAndDirection(t *testing.T) {
	f, err := ParseSortField(" Status ")
	assert.NoError(t, err)
	assert.Equal(t, SortByStatus, f)

	_, err = ParseSortField("priority")
	assert.Error(t, err)

	d, err := ParseDirection("ASC")
	assert.NoError(t, err)
	assert.Equal(t, Asc, d)

	_, err = ParseDirection("up")
	assert.Error(t, err)
}
