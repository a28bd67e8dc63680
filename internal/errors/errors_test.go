package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = New("sentinel")

func TestWrap_PreservesCause(t *testing.T) {
	wrapped := Wrap(errSentinel, "load link")

	assert.True(t, Is(wrapped, errSentinel))
	assert.Equal(t, errSentinel, Cause(wrapped))
	assert.Equal(t, "load link: sentinel", wrapped.Error())
}

func TestWrapf_FormatsMessage(t *testing.T) {
	wrapped := Wrapf(errSentinel, "attempt %d", 3)

	assert.Equal(t, "attempt 3: sentinel", wrapped.Error())
	assert.Contains(t, fmt.Sprintf("%+v", wrapped), "TestWrapf_FormatsMessage")
}

func TestJoin(t *testing.T) {
	other := New("other")
	joined := Join(errSentinel, other)

	assert.True(t, Is(joined, errSentinel))
	assert.True(t, Is(joined, other))
}
