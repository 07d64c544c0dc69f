package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	j, err := New("test-secret")
	require.NoError(t, err)
	assert.NotNil(t, j)
}

func TestSignAndParseRoundTrip(t *testing.T) {
	j, err := New("test-secret")
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour).Unix()
	token, err := j.SignToken(&User{ID: 42, IsAdmin: true, Expires: expires})
	require.NoError(t, err)

	parsed, err := j.ParseUser(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.ID)
	assert.True(t, parsed.IsAdmin)
	assert.Equal(t, expires, parsed.Expires)
}

func TestParseRejectsBadInput(t *testing.T) {
	j, err := New("test-secret")
	require.NoError(t, err)

	_, err = j.ParseUser("")
	assert.Error(t, err)

	_, err = j.ParseUser("not-a-token")
	assert.Error(t, err)

	// 其他密钥签出来的 token 不能通过
	other, err := New("other-secret")
	require.NoError(t, err)
	token, err := other.SignToken(&User{ID: 1, Expires: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	_, err = j.ParseUser(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	j, err := New("test-secret")
	require.NoError(t, err)

	token, err := j.SignToken(&User{ID: 1, Expires: time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, err)

	_, err = j.ParseUser(token)
	assert.Error(t, err)
}
