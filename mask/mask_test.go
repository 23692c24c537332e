package mask

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "*", Mask("a"))
	assert.Equal(t, "sec***", Mask("secret"))
	assert.Equal(t, "pass*****", Mask("password1"))
}

func TestEmail(t *testing.T) {
	masked := Email("fatima@example.com")
	assert.Equal(t, "fat***@exa****.com", masked)
	assert.NotContains(t, masked, "fatima")

	// Not an email at all, masked whole.
	assert.Equal(t, "not-an******", Email("not-an-email"))
}

func TestToken(t *testing.T) {
	jwt := "eyJhbGciOi.eyJzdWIiOi.sflKxwRJSM"
	masked := Token(jwt)
	assert.Equal(t, 2, strings.Count(masked, "."))
	assert.NotEqual(t, jwt, masked)

	opaque := Token("opaque-session-token")
	assert.True(t, strings.HasSuffix(opaque, "**********"))
}
