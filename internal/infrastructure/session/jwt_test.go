package session

import (
	"errors"
	"testing"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"

	"github.com/stretchr/testify/assert"
)

func newTestCodec(ttl time.Duration) *Codec {
	return NewCodec(Config{Secret: "test-secret", TTL: ttl})
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(time.Hour)

	value, err := codec.Encode(&domain.Session{
		UserID:      "user-42",
		Name:        "vitalik",
		AvatarURL:   "https://cdn.example.com/avatars/42/a.png",
		AccessToken: "discord-token",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, value)

	decoded, err := codec.Decode(value)
	assert.NoError(t, err)
	assert.Equal(t, "user-42", decoded.UserID)
	assert.Equal(t, "vitalik", decoded.Name)
	assert.Equal(t, "discord-token", decoded.AccessToken)
	assert.True(t, decoded.Valid(time.Now()))
}

func TestCodec_Decode_Empty(t *testing.T) {
	codec := newTestCodec(time.Hour)

	s, err := codec.Decode("")

	assert.Nil(t, s)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestCodec_Decode_Expired(t *testing.T) {
	codec := newTestCodec(time.Hour)

	value, err := codec.Encode(&domain.Session{
		UserID:      "user-42",
		AccessToken: "discord-token",
		ExpiresAt:   time.Now().Add(-time.Minute),
	})
	assert.NoError(t, err)

	s, err := codec.Decode(value)

	assert.Nil(t, s)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
}

func TestCodec_Decode_WrongSecret(t *testing.T) {
	codec := newTestCodec(time.Hour)
	other := NewCodec(Config{Secret: "other-secret", TTL: time.Hour})

	value, err := other.Encode(&domain.Session{UserID: "user-42", AccessToken: "t"})
	assert.NoError(t, err)

	s, err := codec.Decode(value)

	assert.Nil(t, s)
	assert.True(t, errors.Is(err, domain.ErrSessionInvalid))
}

func TestCodec_Decode_Garbage(t *testing.T) {
	codec := newTestCodec(time.Hour)

	s, err := codec.Decode("not.a.jwt")

	assert.Nil(t, s)
	assert.True(t, errors.Is(err, domain.ErrSessionInvalid))
}
