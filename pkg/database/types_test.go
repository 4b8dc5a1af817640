package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArray_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  StringArray
	}{
		{name: "null", value: nil, want: nil},
		{name: "json bytes", value: []byte(`["wifi","tv"]`), want: StringArray{"wifi", "tv"}},
		{name: "json string", value: `["oxygen"]`, want: StringArray{"oxygen"}},
		{name: "empty json", value: `[]`, want: StringArray{}},
		{name: "postgres array", value: `{wifi,"air, conditioning"}`, want: StringArray{"wifi", "air, conditioning"}},
		{name: "empty postgres array", value: `{}`, want: StringArray{}},
		{name: "bare value", value: "wifi", want: StringArray{"wifi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringArray
			require.NoError(t, got.Scan(tt.value))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringArray_ScanUnsupported(t *testing.T) {
	var got StringArray
	assert.Error(t, got.Scan(42))
}

func TestStringArray_Value(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringArray{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)
}

type rate struct {
	PackageName string  `json:"packageName"`
	Rate        float64 `json:"rate"`
}

func TestJSON_ScanValue(t *testing.T) {
	in := NewJSON([]rate{{PackageName: "Maternity", Rate: 12000}})

	v, err := in.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"packageName":"Maternity","rate":12000}]`, v.(string))

	var out JSON[[]rate]
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in.Data, out.Data)

	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out.Data)

	require.NoError(t, out.Scan(""))
	assert.Nil(t, out.Data)

	assert.Error(t, out.Scan(3.14))
	assert.Error(t, out.Scan("{broken"))
}
