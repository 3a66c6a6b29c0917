// Package repomanager vends repository implementations bound to a database
// handle or transaction, and applies schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bioguard/internal/dbx"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/accesslogs"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/people"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	People(db dbx.DBTX) people.Repository
	AccessLogs(db dbx.DBTX) accesslogs.Repository
}
