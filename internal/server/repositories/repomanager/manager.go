package repomanager

import (
	"context"
	"database/sql"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/comments"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/files"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/folders"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/quota"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/refreshtokens"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/shares"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can use the same repositories inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Folders(db dbx.DBTX) folders.Repository
	Files(db dbx.DBTX) files.Repository
	Shares(db dbx.DBTX) shares.Repository
	Comments(db dbx.DBTX) comments.Repository
	Quota(db dbx.DBTX) quota.Repository
}
