package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret", 30*time.Minute, 24*time.Hour)

	uid, err := s.Parse(s.Issue(KindAccess, 42), KindAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)

	pair := s.IssuePair(7)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(1800), pair.ExpiresIn)
	uid, err = s.Parse(pair.RefreshToken, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), uid)
}

func TestSignerRejectsWrongKind(t *testing.T) {
	s := NewSigner("secret", time.Minute, time.Hour)
	_, err := s.Parse(s.Issue(KindRefresh, 1), KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignerRejectsTampering(t *testing.T) {
	s := NewSigner("secret", time.Minute, time.Hour)
	other := NewSigner("other", time.Minute, time.Hour)
	token := s.Issue(KindAccess, 1)

	_, err := other.Parse(token, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	for _, bad := range []string{"", "abc", token + "x", "." + token} {
		_, err := s.Parse(bad, KindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}

func TestSignerExpiry(t *testing.T) {
	s := NewSigner("secret", time.Minute, time.Hour)
	now := time.Now()
	s.now = func() time.Time { return now }
	token := s.Issue(KindAccess, 3)

	now = now.Add(2 * time.Minute)
	_, err := s.Parse(token, KindAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewSignerDefaultSecret(t *testing.T) {
	a := NewSigner("", time.Minute, time.Hour)
	b := NewSigner(defaultSecret, time.Minute, time.Hour)
	_, err := b.Parse(a.Issue(KindAccess, 1), KindAccess)
	assert.NoError(t, err)
}
