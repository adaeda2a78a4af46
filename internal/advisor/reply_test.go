package advisor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weatherwear/weatherwear/internal/advisor"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantKey string
		wantVal interface{}
		text    bool
	}{
		{
			name:    "fenced block",
			reply:   "Here you go:\n```json\n{\"top\": \"tee\"}\n```\nEnjoy!",
			wantKey: "top",
			wantVal: "tee",
		},
		{
			name:    "bare object with trailing prose",
			reply:   `Sure! {"summary": "denim", "tips": ["layer up"]} Hope it helps {not json}`,
			wantKey: "summary",
			wantVal: "denim",
		},
		{
			name:    "nested object",
			reply:   `{"outer": {"item": "coat", "why": "cold"}, "tip": "stay warm"}`,
			wantKey: "tip",
			wantVal: "stay warm",
		},
		{
			name:  "broken fenced block falls back to text",
			reply: "```json\n{\"top\": \n```",
			text:  true,
		},
		{
			name:  "plain text",
			reply: "Wear whatever makes you happy.",
			text:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := advisor.ParseReply(tt.reply)
			if tt.text {
				assert.Nil(t, advice.Content)
				assert.Equal(t, tt.reply, advice.Text)
				return
			}
			assert.Empty(t, advice.Text)
			assert.Equal(t, tt.wantVal, advice.Content[tt.wantKey])
		})
	}
}
