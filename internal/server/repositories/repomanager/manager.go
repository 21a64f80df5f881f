package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eastsecure/internal/dbx"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/inquiries"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/posts"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/scans"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/servicerequests"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/verificationcodes"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository either on the pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	VerificationCodes(db dbx.DBTX) verificationcodes.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Inquiries(db dbx.DBTX) inquiries.Repository
	ServiceRequests(db dbx.DBTX) servicerequests.Repository
	Scans(db dbx.DBTX) scans.Repository
	Posts(db dbx.DBTX) posts.Repository
}
