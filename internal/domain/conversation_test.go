package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationTitle_ShortMessage(t *testing.T) {
	assert.Equal(t, "flap schedule", ConversationTitle("flap schedule"))
}

func TestConversationTitle_TruncatesAtFiftyRunes(t *testing.T) {
	long := strings.Repeat("x", 80)
	title := ConversationTitle(long)
	assert.Equal(t, 50, len([]rune(title)))
	assert.Equal(t, strings.Repeat("x", 50), title)
}

func TestConversationTitle_MultibyteSafe(t *testing.T) {
	long := strings.Repeat("é", 60)
	title := ConversationTitle(long)
	assert.Equal(t, strings.Repeat("é", 50), title)
}
