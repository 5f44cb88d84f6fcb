package callerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClasses(t *testing.T) {
	cause := errors.New("boom")

	for _, test := range []struct {
		err  error
		want string
	}{
		{&InvalidArgumentError{Err: cause}, "InvalidArgumentError: boom"},
		{&InvalidTransitionError{Err: cause}, "InvalidTransitionError: boom"},
		{&NotAvailableError{Err: cause}, "NotAvailableError: boom"},
		{&NotImplementedError{Err: cause}, "NotImplementedError: boom"},
		{&AlreadyResolvedError{Err: cause}, "AlreadyResolvedError: boom"},
		{&CancelledError{Err: cause}, "CancelledError: boom"},
	} {
		assert.Equal(t, test.want, test.err.Error())
		assert.ErrorIs(t, test.err, cause)
	}
}
