package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/config"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/objectstore"
	commentsrepo "github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/comments"
	filesrepo "github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/files"
	foldersrepo "github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/folders"
	quotarepo "github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/quota"
	refreshtokensrepo "github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/refreshtokens"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
	sharesrepo "github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/shares"
	usersrepo "github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/users"
)

// --- helpers ---

// newTestDB returns a sqlmock-backed *sql.DB preloaded with generous
// transaction expectations, so services using dbx.WithTx run against the
// in-memory fakes without per-test Begin/Commit choreography.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 512; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// memStore is a shared in-memory backing store for every fake repository.
// One mutex covers everything; TryReserveGlobal's check-and-add runs under
// it, mirroring the conditional UPDATE the real repository issues.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	tokens   map[string]*models.RefreshToken
	folders  map[string]*models.Folder
	files    map[string]*models.File
	shares   map[string]*models.Share
	comments map[string]*models.Comment
	global   models.GlobalStorage
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		tokens:   map[string]*models.RefreshToken{},
		folders:  map[string]*models.Folder{},
		files:    map[string]*models.File{},
		shares:   map[string]*models.Share{},
		comments: map[string]*models.Comment{},
	}
}

func (s *memStore) nextTime() time.Time {
	s.seq++
	return time.Unix(int64(1700000000+s.seq), 0)
}

// fakeRepoManager vends fakes over one memStore regardless of the DBTX.
type fakeRepoManager struct {
	s *memStore
}

func newFakeRepoManager() *fakeRepoManager { return &fakeRepoManager{s: newMemStore()} }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return &memUsers{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository {
	return &memRefreshTokens{m.s}
}
func (m *fakeRepoManager) Folders(dbx.DBTX) foldersrepo.Repository   { return &memFolders{m.s} }
func (m *fakeRepoManager) Files(dbx.DBTX) filesrepo.Repository       { return &memFiles{m.s} }
func (m *fakeRepoManager) Shares(dbx.DBTX) sharesrepo.Repository     { return &memShares{m.s} }
func (m *fakeRepoManager) Comments(dbx.DBTX) commentsrepo.Repository { return &memComments{m.s} }
func (m *fakeRepoManager) Quota(dbx.DBTX) quotarepo.Repository       { return &memQuota{m.s} }

// --- users ---

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, common.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.s.nextTime()
	cp := *user
	r.s.users[user.ID] = &cp
	return user, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsers) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsers) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ResetPasswordToken != "" && u.ResetPasswordToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsers) MarkVerified(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationToken = ""
	return nil
}

func (r *memUsers) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &expires
	return nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return nil
}

func (r *memUsers) AddStorageUsed(ctx context.Context, id string, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.StorageUsed += delta
	if u.StorageUsed < 0 {
		u.StorageUsed = 0
	}
	return nil
}

// --- refresh tokens ---

type memRefreshTokens struct{ s *memStore }

func (r *memRefreshTokens) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[token] = &models.RefreshToken{
		ID:      uuid.NewString(),
		UserID:  userID,
		Token:   token,
		Expires: time.Now().Add(validity),
	}
	return nil
}

func (r *memRefreshTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memRefreshTokens) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, token)
	return nil
}

// --- folders ---

type memFolders struct{ s *memStore }

func (r *memFolders) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	folder.CreatedAt = r.s.nextTime()
	folder.UpdatedAt = folder.CreatedAt
	cp := *folder
	r.s.folders[folder.ID] = &cp
	return folder, nil
}

func (r *memFolders) Get(ctx context.Context, id string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memFolders) GetOwned(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	f, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	return f, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *memFolders) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Folder
	for _, f := range r.s.folders {
		if f.OwnerID == ownerID && sameParent(f.ParentID, parentID) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memFolders) ListSubfolders(ctx context.Context, parentID string) ([]*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Folder
	for _, f := range r.s.folders {
		if f.ParentID != nil && *f.ParentID == parentID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFolders) Update(ctx context.Context, id, ownerID, name, description, color string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	f.Name = name
	f.Description = description
	f.Color = color
	f.UpdatedAt = r.s.nextTime()
	cp := *f
	return &cp, nil
}

func (r *memFolders) Move(ctx context.Context, id, ownerID string, parentID *string, path string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	f.ParentID = parentID
	f.Path = path
	f.UpdatedAt = r.s.nextTime()
	cp := *f
	return &cp, nil
}

func (r *memFolders) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.folders, id)
	return nil
}

// --- files ---

type memFiles struct{ s *memStore }

func (r *memFiles) Create(ctx context.Context, file *models.File) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.UploadedAt = r.s.nextTime()
	cp := *file
	r.s.files[file.ID] = &cp
	return file, nil
}

func (r *memFiles) Get(ctx context.Context, id string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memFiles) GetOwned(ctx context.Context, id, ownerID string) (*models.File, error) {
	f, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	return f, nil
}

func (r *memFiles) ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.File
	for _, f := range r.s.files {
		if f.OwnerID == ownerID && sameParent(f.FolderID, folderID) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *memFiles) ListInFolder(ctx context.Context, folderID string) ([]*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.File
	for _, f := range r.s.files {
		if f.FolderID != nil && *f.FolderID == folderID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFiles) Rename(ctx context.Context, id, ownerID, name string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	f.Name = name
	cp := *f
	return &cp, nil
}

func (r *memFiles) Move(ctx context.Context, id, ownerID string, folderID *string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	f.FolderID = folderID
	cp := *f
	return &cp, nil
}

func (r *memFiles) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.files, id)
	return nil
}

// --- shares ---

type memShares struct{ s *memStore }

func (r *memShares) Create(ctx context.Context, share *models.Share) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if share.ID == "" {
		share.ID = uuid.NewString()
	}
	share.CreatedAt = r.s.nextTime()
	cp := *share
	r.s.shares[share.ID] = &cp
	return share, nil
}

func (r *memShares) Get(ctx context.Context, id string) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shares[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (r *memShares) FindDirect(ctx context.Context, folderID, userID string) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shares {
		if sh.FolderID == folderID && sh.SharedWithID != nil && *sh.SharedWithID == userID {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memShares) FindInvite(ctx context.Context, folderID, email string) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shares {
		if sh.FolderID == folderID && sh.SharedWithID == nil && sh.InvitedEmail == email {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memShares) FindByPublicLink(ctx context.Context, token string) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shares {
		if sh.IsPublic && sh.PublicLink == token {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memShares) ListByFolder(ctx context.Context, folderID string) ([]*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Share
	for _, sh := range r.s.shares {
		if sh.FolderID == folderID {
			cp := *sh
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memShares) ListForUser(ctx context.Context, userID string) ([]*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Share
	for _, sh := range r.s.shares {
		if sh.SharedWithID != nil && *sh.SharedWithID == userID {
			cp := *sh
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memShares) UpdatePermission(ctx context.Context, id string, permission models.Permission) (*models.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shares[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	sh.Permission = permission
	cp := *sh
	return &cp, nil
}

func (r *memShares) LinkPending(ctx context.Context, email, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sh := range r.s.shares {
		if sh.SharedWithID == nil && sh.InvitedEmail == email {
			id := userID
			sh.SharedWithID = &id
			sh.InvitedEmail = ""
			n++
		}
	}
	return n, nil
}

func (r *memShares) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.shares, id)
	return nil
}

// --- comments ---

type memComments struct{ s *memStore }

func (r *memComments) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = r.s.nextTime()
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	r.s.comments[comment.ID] = &cp
	return comment, nil
}

func (r *memComments) Get(ctx context.Context, id string) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memComments) GetOwn(ctx context.Context, id, userID string) (*models.Comment, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, common.ErrNotFound
	}
	return c, nil
}

func (r *memComments) ListByFile(ctx context.Context, fileID string) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.s.comments {
		if c.FileID == fileID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memComments) UpdateText(ctx context.Context, id, userID, text string) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrNotFound
	}
	c.Text = text
	c.UpdatedAt = r.s.nextTime()
	cp := *c
	return &cp, nil
}

// orphanChildrenOf mirrors the schema's ON DELETE SET NULL on parent_id.
// Callers must hold s.mu.
func (r *memComments) orphanChildrenOf(id string) {
	for _, c := range r.s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
		}
	}
}

func (r *memComments) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.comments, id)
	r.orphanChildrenOf(id)
	return nil
}

func (r *memComments) DeleteReplies(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for cid, c := range r.s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(r.s.comments, cid)
			r.orphanChildrenOf(cid)
		}
	}
	return nil
}

// --- quota ---

type memQuota struct{ s *memStore }

func (r *memQuota) EnsureGlobal(ctx context.Context, limit int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.global.TotalLimit == 0 {
		r.s.global.TotalLimit = limit
	}
	return nil
}

func (r *memQuota) GetGlobal(ctx context.Context) (*models.GlobalStorage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := r.s.global
	return &cp, nil
}

func (r *memQuota) TryReserveGlobal(ctx context.Context, size int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.global.TotalUsed+size > r.s.global.TotalLimit {
		return &common.QuotaExceededError{
			Used:      r.s.global.TotalUsed,
			Limit:     r.s.global.TotalLimit,
			Requested: size,
		}
	}
	r.s.global.TotalUsed += size
	return nil
}

func (r *memQuota) ReleaseGlobal(ctx context.Context, size int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.global.TotalUsed -= size
	if r.s.global.TotalUsed < 0 {
		r.s.global.TotalUsed = 0
	}
	return nil
}

func (r *memQuota) ReconcileGlobal(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, f := range r.s.files {
		sum += f.Size
	}
	r.s.global.TotalUsed = sum
	return sum, nil
}

func (r *memQuota) ReconcileUsers(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := map[string]int64{}
	for _, f := range r.s.files {
		totals[f.OwnerID] += f.Size
	}
	for id, u := range r.s.users {
		u.StorageUsed = totals[id]
	}
	return nil
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// testEnv wires every service over one fake repo manager and an in-memory
// object store, the way the app wires the real implementations.
type testEnv struct {
	db       *sql.DB
	rm       *fakeRepoManager
	store    *objectstore.MemStore
	notifier *recordingNotifier
	users    *UserService
	quota    *QuotaService
	access   *AccessService
	files    *FileService
	folders  *FolderService
	shares   *ShareService
	comments *CommentService
}

// recordingNotifier captures notifications instead of sending them.
type recordingNotifier struct {
	mu          sync.Mutex
	verified    []string
	resets      []string
	invitations []string
	mentions    []string
	failAll     bool
}

func (n *recordingNotifier) SendVerification(ctx context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAll {
		return errSMTPDown
	}
	n.verified = append(n.verified, email)
	return nil
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAll {
		return errSMTPDown
	}
	n.resets = append(n.resets, email)
	return nil
}

func (n *recordingNotifier) SendShareInvitation(ctx context.Context, email, folderName, inviterEmail string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAll {
		return errSMTPDown
	}
	n.invitations = append(n.invitations, email)
	return nil
}

func (n *recordingNotifier) SendMentionNotice(ctx context.Context, email, fileName, commenterEmail string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAll {
		return errSMTPDown
	}
	n.mentions = append(n.mentions, email)
	return nil
}

var errSMTPDown = errors.New("smtp down")

func newTestEnv(t *testing.T, globalLimit int64) *testEnv {
	t.Helper()
	db := newTestDB(t)
	rm := newFakeRepoManager()
	store := objectstore.NewMemStore()
	notifier := &recordingNotifier{}
	logger := logging.NewDefault()
	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 24 * time.Hour,
		GlobalStorageLimit:           globalLimit,
		UserStorageLimit:             globalLimit,
	}

	quota := NewQuotaService(db, rm, logger, globalLimit)
	if err := quota.Init(context.Background()); err != nil {
		t.Fatalf("quota.Init error: %v", err)
	}
	access := NewAccessService(db, rm)
	files := NewFileService(db, rm, store, quota, access, logger)
	folders := NewFolderService(db, rm, files, access, logger)
	shares := NewShareService(db, rm, access, notifier, logger)
	comments := NewCommentService(db, rm, files, notifier, logger)
	users := NewUserService(db, rm, notifier, logger, cfg)

	return &testEnv{
		db: db, rm: rm, store: store, notifier: notifier,
		users: users, quota: quota, access: access, files: files,
		folders: folders, shares: shares, comments: comments,
	}
}

// addUser seeds an account directly, skipping bcrypt for speed.
func (e *testEnv) addUser(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := (&memUsers{e.rm.s}).Create(context.Background(), &models.User{
		Email:        email,
		PasswordHash: "x",
		StorageLimit: e.rm.s.global.TotalLimit,
	})
	if err != nil {
		t.Fatalf("seed user error: %v", err)
	}
	return u
}

// addFolder seeds a folder owned by userID under parent (nil = root).
func (e *testEnv) addFolder(t *testing.T, userID string, parent *models.Folder, name string) *models.Folder {
	t.Helper()
	var parentID *string
	if parent != nil {
		parentID = &parent.ID
	}
	f, err := e.folders.Create(context.Background(), userID, parentID, name, "", "")
	if err != nil {
		t.Fatalf("seed folder error: %v", err)
	}
	return f
}
