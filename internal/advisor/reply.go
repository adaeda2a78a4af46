package advisor

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```")

// ParseReply extracts a JSON object from a model reply. A fenced json block
// wins, then the first balanced object in the text. Anything else is kept
// as plain text.
func ParseReply(reply string) *Advice {
	if m := fencedJSON.FindStringSubmatch(reply); m != nil {
		if content, ok := decodeObject(m[1]); ok {
			return &Advice{Content: content}
		}
	}

	if i := strings.IndexByte(reply, '{'); i >= 0 {
		if content, ok := decodeObject(reply[i:]); ok {
			return &Advice{Content: content}
		}
	}

	return &Advice{Text: reply}
}

// decodeObject decodes the first JSON object at the start of s, ignoring
// whatever follows it.
func decodeObject(s string) (map[string]any, bool) {
	var content map[string]any
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&content); err != nil || content == nil {
		return nil, false
	}
	return content, true
}
