package repomanager

import (
	"context"
	"database/sql"

	"github.com/sweetshop/backend/internal/dbx"
	"github.com/sweetshop/backend/internal/server/repositories/categories"
	"github.com/sweetshop/backend/internal/server/repositories/refreshtokens"
	"github.com/sweetshop/backend/internal/server/repositories/sweets"
	"github.com/sweetshop/backend/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to an arbitrary DBTX (either the
// shared *sql.DB or an in-flight *sql.Tx) and runs schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Sweets(db dbx.DBTX) sweets.Repository
	Categories(db dbx.DBTX) categories.Repository
}
