package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected time.Duration
		wantErr  bool
	}{
		{name: "string form", json: `"30s"`, expected: 30 * time.Second},
		{name: "compound string", json: `"1m30s"`, expected: 90 * time.Second},
		{name: "integer nanoseconds", json: `3000000000`, expected: 3 * time.Second},
		{name: "unparsable string", json: `"abc"`, wantErr: true},
		{name: "wrong type", json: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.json), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Std())
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Duration(30 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"30s"`, string(raw))
}
