package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCause(t *testing.T) {
	root := New("disk full")

	assert.Nil(t, Cause(nil))
	assert.Same(t, root, Cause(root))
	assert.Same(t, root, Cause(Wrap(Wrapf(root, "order %d", 7), "failed to create order")))
	assert.Same(t, root, Cause(WithStack(root)))

	joined := Join(New("a"), root)
	assert.Same(t, joined, Cause(Wrap(joined, "commit")))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
	assert.NoError(t, Join(nil, nil))
}
