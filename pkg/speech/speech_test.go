package speech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthArgs(t *testing.T) {
	args := synthArgs(160, "hi", "Gehun ke liye parinaam")
	assert.Equal(t, []string{"-s", "160", "-v", "hi", "--stdout", "Gehun ke liye parinaam"}, args)

	// No language flag when the code is empty.
	args = synthArgs(120, "", "hello")
	assert.Equal(t, []string{"-s", "120", "--stdout", "hello"}, args)
}

func TestNull_Say(t *testing.T) {
	assert.NoError(t, Null{}.Say(context.Background(), "anything", "en"))
}
