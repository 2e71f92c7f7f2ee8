package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		unique  string
		payload string
	}{
		{name: "key and payload", data: "stop_chat|42", unique: "stop_chat", payload: "42"},
		{name: "prefixed", data: "\\fstop_chat|42", unique: "stop_chat", payload: "42"},
		{name: "key only", data: "stop_chat", unique: "stop_chat", payload: ""},
		{name: "empty payload kept", data: "stop_chat|", unique: "stop_chat", payload: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(&tele.Callback{Data: tt.data})
			assert.Equal(t, tt.unique, unique)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	assert.Empty(t, unique)
	assert.Empty(t, payload)
}
