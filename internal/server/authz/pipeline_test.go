package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = &auth.Claims{ID: 1, Username: "alice"}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer    ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := ExtractBearer(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize_MissingToken(t *testing.T) {
	v, c := &mockVerifier{}, &mockConfirmer{}
	p := New(v, c)

	res, rej := p.Authorize(context.Background(), "")
	assert.Nil(t, res)
	require.NotNil(t, rej)
	assert.Equal(t, StageExtractToken, rej.Stage)
	assert.Equal(t, Unauthenticated, rej.Kind)

	v.AssertNotCalled(t, "Verify", "")
}

func TestAuthorize_InvalidToken(t *testing.T) {
	v, c := &mockVerifier{}, &mockConfirmer{}
	v.On("Verify", "bad").Return(nil, common.ErrSignatureInvalid)

	_, rej := New(v, c).Authorize(context.Background(), "Bearer bad")
	require.NotNil(t, rej)
	assert.Equal(t, StageVerifyToken, rej.Stage)
	assert.Equal(t, Forbidden, rej.Kind)
	assert.ErrorIs(t, rej, common.ErrSignatureInvalid)

	c.AssertNotCalled(t, "Confirm", int64(1), "alice")
}

func TestAuthorize_UnknownIdentity(t *testing.T) {
	v, c := &mockVerifier{}, &mockConfirmer{}
	v.On("Verify", "tok").Return(alice, nil)
	c.On("Confirm", int64(1), "alice").Return(nil, common.ErrorNotFound)

	_, rej := New(v, c).Authorize(context.Background(), "Bearer tok")
	require.NotNil(t, rej)
	assert.Equal(t, StageConfirmIdentity, rej.Stage)
	assert.Equal(t, Forbidden, rej.Kind)
	assert.Equal(t, int64(1), rej.UserID)
}

func TestAuthorize_IdentityStoreFailure(t *testing.T) {
	v, c := &mockVerifier{}, &mockConfirmer{}
	v.On("Verify", "tok").Return(alice, nil)
	c.On("Confirm", int64(1), "alice").Return(nil, errors.New("pool exhausted"))

	_, rej := New(v, c).Authorize(context.Background(), "Bearer tok")
	require.NotNil(t, rej)
	assert.Equal(t, Internal, rej.Kind)
}

func TestAuthorize_RevocationOptIn(t *testing.T) {
	v, c, r := &mockVerifier{}, &mockConfirmer{}, &mockRevocations{}
	v.On("Verify", "tok").Return(alice, nil)
	c.On("Confirm", int64(1), "alice").Return(&models.User{ID: 1, UserName: "alice"}, nil)
	r.On("IsRevoked", "tok").Return(true, nil)

	base := New(v, c)
	res, rej := base.Authorize(context.Background(), "Bearer tok")
	require.Nil(t, rej)
	assert.Equal(t, "tok", res.Token)
	r.AssertNotCalled(t, "IsRevoked", "tok")

	_, rej = base.With(WithRevocationCheck(r)).Authorize(context.Background(), "Bearer tok")
	require.NotNil(t, rej)
	assert.Equal(t, StageCheckRevocation, rej.Stage)
	assert.Equal(t, Unauthenticated, rej.Kind)
	r.AssertExpectations(t)
}

func TestAuthorize_RevocationStoreFailure(t *testing.T) {
	v, c, r := &mockVerifier{}, &mockConfirmer{}, &mockRevocations{}
	v.On("Verify", "tok").Return(alice, nil)
	c.On("Confirm", int64(1), "alice").Return(&models.User{ID: 1}, nil)
	r.On("IsRevoked", "tok").Return(false, errors.New("timeout"))

	_, rej := New(v, c, WithRevocationCheck(r)).Authorize(context.Background(), "Bearer tok")
	require.NotNil(t, rej)
	assert.Equal(t, StageCheckRevocation, rej.Stage)
	assert.Equal(t, Internal, rej.Kind)
}

func TestAuthorize_Elevation(t *testing.T) {
	v, c, r := &mockVerifier{}, &mockConfirmer{}, &mockRevocations{}
	elevated := &auth.Claims{ID: 1, Username: "alice", MFA: true}
	v.On("Verify", "base").Return(alice, nil)
	v.On("Verify", "elevated").Return(elevated, nil)
	c.On("Confirm", int64(1), "alice").Return(&models.User{ID: 1}, nil)
	r.On("IsRevoked", "base").Return(false, nil)
	r.On("IsRevoked", "elevated").Return(false, nil)

	p := New(v, c, WithRevocationCheck(r), RequireElevation())

	_, rej := p.Authorize(context.Background(), "Bearer base")
	require.NotNil(t, rej)
	assert.Equal(t, StageCheckElevation, rej.Stage)
	assert.Equal(t, Forbidden, rej.Kind)

	res, rej := p.Authorize(context.Background(), "Bearer elevated")
	require.Nil(t, rej)
	assert.True(t, res.Claims.MFA)
}

func TestAuthorize_WithRealTokens(t *testing.T) {
	tokens, err := auth.NewTokenService([]byte("k"))
	require.NoError(t, err)
	other, err := auth.NewTokenService([]byte("other"))
	require.NoError(t, err)

	c := &mockConfirmer{}
	c.On("Confirm", int64(1), "alice").Return(&models.User{ID: 1, UserName: "alice"}, nil)

	p := New(tokens, c)

	tok, err := tokens.Issue(auth.Claims{ID: 1, Username: "alice"})
	require.NoError(t, err)
	res, rej := p.Authorize(context.Background(), "Bearer "+tok)
	require.Nil(t, rej)
	assert.Equal(t, int64(1), res.Claims.ID)

	foreign, err := other.Issue(auth.Claims{ID: 1, Username: "alice"})
	require.NoError(t, err)
	_, rej = p.Authorize(context.Background(), "Bearer "+foreign)
	require.NotNil(t, rej)
	assert.Equal(t, Forbidden, rej.Kind)
}

func TestRejection_Error(t *testing.T) {
	r := &Rejection{Stage: StageCheckRevocation, Kind: Unauthenticated, Err: common.ErrorUnauthorized}
	assert.Equal(t, "unauthenticated at check_revocation: unauthorized", r.Error())
	assert.Equal(t, "forbidden", Forbidden.String())
	assert.Equal(t, "internal", Internal.String())
}
