package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/chatserver/internal/dbx"
	"github.com/dmitrijs2005/chatserver/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
