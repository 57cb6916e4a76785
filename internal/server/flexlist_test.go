package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single string", `{"l":"oats"}`, []string{"oats"}},
		{"array", `{"l":["oats","dates"]}`, []string{"oats", "dates"}},
		{"empty string", `{"l":""}`, []string{}},
		{"blank string", `{"l":"   "}`, []string{}},
		{"null", `{"l":null}`, []string{}},
		{"empty array", `{"l":[]}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				L FlexList `json:"l"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.in), &body))
			assert.Equal(t, tt.want, body.L.Strings())
		})
	}
}

func TestFlexList_RejectsOtherShapes(t *testing.T) {
	for _, in := range []string{`{"l":42}`, `{"l":{"a":"b"}}`, `{"l":[1,2]}`} {
		var body struct {
			L FlexList `json:"l"`
		}
		assert.Error(t, json.Unmarshal([]byte(in), &body), in)
	}
}

func TestFlexList_AbsentFieldStaysNil(t *testing.T) {
	var body struct {
		L FlexList `json:"l"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.Nil(t, body.L.Strings())
}
