package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portal-engine/factory"
	"github.com/warp/portal-engine/profile"
	"github.com/warp/portal-engine/wizard"
)

func TestParseForm_BankDetailsPreset(t *testing.T) {
	form, err := factory.ParseForm(profile.BankDetailsJSON())
	require.NoError(t, err)

	assert.Equal(t, "bank-details", form.ID)
	assert.Len(t, form.Fields, 6)
	assert.Equal(t, "sortCode", form.KeyFor(profile.FieldSortCode))

	// One-way unlocks survive the round trip
	assert.ElementsMatch(t,
		[]wizard.FieldName{profile.FieldAccountNumber, profile.FieldAccountHolder},
		form.Unlocks[profile.FieldSortCode])
	assert.Empty(t, form.Unlocks[profile.FieldAccountHolder])

	require.Len(t, form.Rules, 2)
	assert.Equal(t, profile.FieldAccountHolder, form.Rules[0].Require)
	assert.Equal(t, "BACS", form.Rules[1].Equals)
}

func TestParseForm_UserDetailsPreset(t *testing.T) {
	form, err := factory.ParseForm(profile.UserDetailsJSON())
	require.NoError(t, err)

	assert.Equal(t, "user-details", form.ID)
	assert.Len(t, form.Fields, 5)
	assert.Empty(t, form.Rules)
	assert.Empty(t, form.Unlocks)
	assert.NotEmpty(t, form.ReasonOptions)
}

func TestParseForm_Rejections(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"malformed json", `{`, "invalid form JSON"},
		{"missing id", `{"fields":[{"name":"A","key":"a"}]}`, "form id is required"},
		{"no fields", `{"id":"x"}`, "declares no fields"},
		{"field without key", `{"id":"x","fields":[{"name":"A"}]}`, "needs both name and key"},
		{"duplicate name", `{"id":"x","fields":[{"name":"A","key":"a"},{"name":"A","key":"b"}]}`, "duplicate field"},
		{"duplicate key", `{"id":"x","fields":[{"name":"A","key":"a"},{"name":"B","key":"a"}]}`, "duplicate key"},
		{"unlock from unknown", `{"id":"x","fields":[{"name":"A","key":"a"}],"unlocks":{"B":["A"]}}`, "unlock from unknown"},
		{"unlock to unknown", `{"id":"x","fields":[{"name":"A","key":"a"}],"unlocks":{"A":["B"]}}`, "unlock to unknown"},
		{"rule without require", `{"id":"x","fields":[{"name":"A","key":"a"}],"rules":[{"when_selected":"A"}]}`, "no required field"},
		{"rule without trigger", `{"id":"x","fields":[{"name":"A","key":"a"}],"rules":[{"require":"A"}]}`, "no trigger"},
		{"rule on unknown field", `{"id":"x","fields":[{"name":"A","key":"a"}],"rules":[{"when_selected":"B","require":"A"}]}`, "unknown field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseForm(tt.json)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustParseForm_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { factory.MustParseForm(`{`) })
	assert.NotPanics(t, func() { factory.MustParseForm(profile.BankDetailsJSON()) })
}
