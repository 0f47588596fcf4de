package expense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/pbudget/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "dot", input: "12.34", want: 12.34},
		{name: "comma", input: "12,34", want: 12.34},
		{name: "integer", input: " 100 ", want: 100},
		{name: "thousands with dot", input: "1,234.50", want: 1234.5},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "text", input: "abc", wantErr: true},
		{name: "nan", input: "NaN", wantErr: true},
		{name: "inf", input: "Inf", wantErr: true},
		{name: "at limit", input: "1000000000000", want: 1e12},
		{name: "above limit", input: "1000000000000.01", wantErr: true},
		{name: "float overflow", input: "1e400", wantErr: true},
		{name: "huge finite", input: "1e308", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParsePayment(t *testing.T) {
	v, err := ParsePayment("2500")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, v)

	_, err = ParsePayment("0")
	assert.ErrorIs(t, err, ErrInvalidPayment)
	_, err = ParsePayment("-1")
	assert.ErrorIs(t, err, ErrInvalidPayment)
	_, err = ParsePayment("1e400")
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestParseDuration(t *testing.T) {
	n, err := ParseDuration(" 6 ")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = ParseDuration("1200")
	require.NoError(t, err)
	assert.Equal(t, MaxDurationMonths, n)

	for _, bad := range []string{"", "0", "-2", "1.5", "six", "1201", "99999999999999999999"} {
		_, err := ParseDuration(bad)
		assert.ErrorIs(t, err, ErrInvalidDuration, bad)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", d.Format(model.DateLayout))

	_, err = ParseDate("28/02/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("2025-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDraftValidate(t *testing.T) {
	f, err := Draft{
		Name:          "  Drone pilot ",
		Category:      "talent",
		Amount:        "450,00",
		Date:          "2025-04-01",
		AttachmentRef: " invoice-17.pdf ",
	}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Drone pilot", f.Name)
	assert.Equal(t, model.CategoryTalentCrew, f.Category)
	assert.Equal(t, 450.0, f.Amount)
	assert.Equal(t, "invoice-17.pdf", f.AttachmentRef)
}

func TestDraftValidate_ReportsEveryField(t *testing.T) {
	_, err := Draft{Name: " ", Category: "Catering", Amount: "0", Date: "soon"}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestFromExpense(t *testing.T) {
	d, _ := model.ParseDate("2025-01-02")
	e := model.Expense{ID: "x", Name: "Logo", Category: model.CategoryOther, Amount: 12.5, Date: d}
	draft := FromExpense(e)
	assert.Equal(t, Draft{Name: "Logo", Category: "Other", Amount: "12.5", Date: "2025-01-02"}, draft)

	f, err := draft.Validate()
	require.NoError(t, err)
	assert.Equal(t, e.Amount, f.Amount)
}

func TestFieldCheckers(t *testing.T) {
	assert.ErrorIs(t, CheckName("  "), ErrEmptyName)
	assert.NoError(t, CheckName("Crew lunch"))

	assert.ErrorIs(t, CheckCategory("Catering"), ErrInvalidCategory)
	assert.NoError(t, CheckCategory("travel"))

	assert.ErrorIs(t, CheckAmount("-3"), ErrInvalidAmount)
	assert.NoError(t, CheckAmount("3,50"))

	assert.ErrorIs(t, CheckDate("01/02/2025"), ErrInvalidDate)
	assert.NoError(t, CheckDate("2025-02-01"))

	assert.ErrorIs(t, CheckPayment("0"), ErrInvalidPayment)
	assert.NoError(t, CheckPayment("5000"))

	assert.ErrorIs(t, CheckDuration("0"), ErrInvalidDuration)
	assert.NoError(t, CheckDuration("6"))
}
