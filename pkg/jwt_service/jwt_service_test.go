package jwtservice_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/zenjournal/internal/error_values"
	"github.com/limbo/zenjournal/pkg/entity"
	jwtservice "github.com/limbo/zenjournal/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	s := jwtservice.New("secret", time.Hour)
	user := &entity.User{ID: uuid.New(), Email: "ann@example.com"}
	token, err := s.GenerateToken(user)
	require.NoError(t, err)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseInvalid(t *testing.T) {
	s := jwtservice.New("secret", time.Hour)
	other := jwtservice.New("other", time.Hour)
	token, err := other.GenerateToken(&entity.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = s.ParseToken(token)
	assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)

	_, err = s.ParseToken("not-a-token")
	assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
}

func TestParseExpired(t *testing.T) {
	s := jwtservice.New("secret", time.Nanosecond)
	token, err := s.GenerateToken(&entity.User{ID: uuid.New()})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = s.ParseToken(token)
	assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
}
