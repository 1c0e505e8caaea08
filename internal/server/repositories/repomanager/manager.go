package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/mfasecrets"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code path
// serves both plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Revocations(db dbx.DBTX) revocations.Repository
	MFASecrets(db dbx.DBTX) mfasecrets.Repository
}
