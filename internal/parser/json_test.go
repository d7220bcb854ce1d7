package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"pure object", `{"action":"swap"}`, `{"action":"swap"}`},
		{"prose around", `Sure! Here you go: {"action":"send","amount":"1"} Hope that helps.`, `{"action":"send","amount":"1"}`},
		{"nested object", `prefix {"a":{"b":1},"c":2} suffix`, `{"a":{"b":1},"c":2}`},
		{"brace inside string", `{"note":"use { and } freely","x":1}`, `{"note":"use { and } freely","x":1}`},
		{"escaped quote inside string", `{"note":"she said \"hi{\"","x":1}`, `{"note":"she said \"hi{\"","x":1}`},
		{"two objects takes first", `{"a":1} {"b":2}`, `{"a":1}`},
		{"no object", "no json here", ""},
		{"unterminated", `{"a": {"b": 1}`, ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSON(tc.in))
		})
	}
}
