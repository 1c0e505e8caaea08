package authz

import (
	"context"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
	"github.com/stretchr/testify/mock"
)

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(token string) (*auth.Claims, error) {
	args := m.Called(token)
	c, _ := args.Get(0).(*auth.Claims)
	return c, args.Error(1)
}

type mockConfirmer struct{ mock.Mock }

func (m *mockConfirmer) Confirm(ctx context.Context, id int64, username string) (*models.User, error) {
	args := m.Called(id, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockRevocations struct{ mock.Mock }

func (m *mockRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(token)
	return args.Bool(0), args.Error(1)
}
