package property

import (
	"testing"

	"github.com/agentic-research/notional/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	cases := []struct {
		kind Kind
		in   string
		want string
	}{
		{KindTitle, "Milk", `{"title":[{"type":"text","text":{"content":"Milk"}}]}`},
		{KindNumber, "4.5", `{"number":4.5}`},
		{KindNumber, "", `{"number":null}`},
		{KindCheckbox, "true", `{"checkbox":true}`},
		{KindSelect, "Dairy", `{"select":{"name":"Dairy"}}`},
		{KindSelect, "", `{"select":null}`},
		{KindMultiSelect, "a, b,,c", `{"multi_select":[{"name":"a"},{"name":"b"},{"name":"c"}]}`},
		{KindDate, "2021-08-04", `{"date":{"start":"2021-08-04"}}`},
		{KindURL, "https://example.com", `{"url":"https://example.com"}`},
		{KindRelation, "ec41280d-386e-4bcf-8706-f21704cd798b", `{"relation":[{"id":"ec41280d-386e-4bcf-8706-f21704cd798b"}]}`},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+tc.in, func(t *testing.T) {
			v, err := FromString(tc.kind, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())

			out, err := EncodeForWrite("p", v)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(out))
		})
	}
}

func TestFromString_DateRange(t *testing.T) {
	v, err := FromString(KindDate, "2021-08-04/2021-08-06")
	require.NoError(t, err)
	d := v.(*Date)
	require.NotNil(t, d.Range)
	assert.True(t, d.Range.IsRange())
}

func TestFromString_Errors(t *testing.T) {
	for name, tc := range map[string]struct {
		kind Kind
		in   string
	}{
		"bad number":   {KindNumber, "four"},
		"bad checkbox": {KindCheckbox, "maybe"},
		"bad date":     {KindDate, "August 4"},
		"unknown":      {Kind("button"), "x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromString(tc.kind, tc.in)
			assert.Error(t, err)
		})
	}
}

func TestFromString_ReadOnly(t *testing.T) {
	for _, k := range []Kind{KindCreatedTime, KindFormula, KindRollup, KindUniqueID} {
		_, err := FromString(k, "x")
		var ro *api.ReadOnlyPropertyError
		require.ErrorAs(t, err, &ro, "%s", k)
		assert.Equal(t, string(k), ro.Kind)
	}
}
