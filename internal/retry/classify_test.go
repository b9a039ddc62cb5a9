package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableSQLState(t *testing.T) {
	cases := map[string]bool{
		"08001": true,  // unable to connect
		"08S01": true,  // communication link failure
		"40001": true,  // serialization failure
		"40P01": true,  // deadlock detected
		"HY000": true,  // generic server error
		"23000": false, // integrity constraint
		"42S02": false, // table missing
		"28000": false, // bad credentials
		"":      false,
	}
	for state, want := range cases {
		assert.Equal(t, want, IsRetryableSQLState(state), state)
	}
}

func TestIsRetryableMessage(t *testing.T) {
	assert.True(t, IsRetryableMessage("Connection Timeout"))
	assert.True(t, IsRetryableMessage("Communications link failure"))
	assert.True(t, IsRetryableMessage("write: broken pipe"))
	assert.True(t, IsRetryableMessage("network is unreachable"))
	assert.False(t, IsRetryableMessage("syntax error at or near"))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(context.Canceled))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("query: %w", driver.ErrBadConn)))
	assert.True(t, IsTransient(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.False(t, IsTransient(errors.New("duplicate key")))
}
