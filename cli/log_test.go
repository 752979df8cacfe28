package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"eval", "--log-level", "debug", "--log-format", "text", "doc.yaml"},
			want: logConfig{Level: "debug", Format: "text", Pretty: true},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=warn", "--log-caller", "--log-pretty=false"},
			want: logConfig{Level: "warn", Caller: true},
		},
		{
			name: "negated",
			args: []string{"--no-log-pretty", "--no-log-caller=false"},
			want: logConfig{Caller: true},
		},
		{
			name: "stops at terminator",
			args: []string{"--", "--log-level", "error"},
			want: logConfig{Pretty: true},
		},
		{
			name: "bad boolean ignored",
			args: []string{"--log-caller=maybe"},
			want: logConfig{Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logConfig{Pretty: true}
			got.scan(tt.args)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value            string
		assigned, negate bool
		want, ok         bool
	}{
		{"", false, false, true, true},
		{"", false, true, false, true},
		{"true", true, false, true, true},
		{"0", true, false, false, true},
		{"false", true, true, true, true},
		{"x", true, false, false, false},
	}

	for _, tt := range tests {
		got, ok := scanBool(tt.value, tt.assigned, tt.negate)
		assert.Equal(t, tt.want, got, "%+v", tt)
		assert.Equal(t, tt.ok, ok, "%+v", tt)
	}
}
