package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/4seer/Twake/internal/email"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/types"
)

// The mocks are stateful in-memory fakes with per-method override hooks for
// error injection.

// ============================================
// Workspace repository
// ============================================

type mockWorkspaceRepo struct {
	workspaces map[string][]*repository.Workspace          // companyID -> ordered workspaces
	users      map[string]map[string]*repository.WorkspaceUser // workspaceID -> userID -> edge
	pending    map[string]map[string]*repository.WorkspacePendingUser

	saveFn       func(ctx context.Context, workspace *repository.Workspace) error
	upsertUserFn func(ctx context.Context, wu *repository.WorkspaceUser) error
	findUserFn   func(ctx context.Context, workspaceID, userID string) (*repository.WorkspaceUser, error)

	saveCalls       int
	upsertUserCalls int
	removeUserCalls int
}

func newMockWorkspaceRepo() *mockWorkspaceRepo {
	return &mockWorkspaceRepo{
		workspaces: make(map[string][]*repository.Workspace),
		users:      make(map[string]map[string]*repository.WorkspaceUser),
		pending:    make(map[string]map[string]*repository.WorkspacePendingUser),
	}
}

func (m *mockWorkspaceRepo) Save(ctx context.Context, workspace *repository.Workspace) error {
	m.saveCalls++
	if m.saveFn != nil {
		return m.saveFn(ctx, workspace)
	}
	for i, ws := range m.workspaces[workspace.CompanyID] {
		if ws.ID == workspace.ID {
			m.workspaces[workspace.CompanyID][i] = workspace
			return nil
		}
	}
	m.workspaces[workspace.CompanyID] = append(m.workspaces[workspace.CompanyID], workspace)
	return nil
}

func (m *mockWorkspaceRepo) FindByID(ctx context.Context, companyID, id string) (*repository.Workspace, error) {
	for _, ws := range m.workspaces[companyID] {
		if ws.ID == id {
			return ws, nil
		}
	}
	return nil, nil
}

func (m *mockWorkspaceRepo) FindByWorkspaceID(ctx context.Context, id string) (*repository.Workspace, error) {
	for _, workspaces := range m.workspaces {
		for _, ws := range workspaces {
			if ws.ID == id {
				return ws, nil
			}
		}
	}
	return nil, nil
}

func (m *mockWorkspaceRepo) List(ctx context.Context, companyID string, page types.Pagination) ([]*repository.Workspace, string, error) {
	all := m.workspaces[companyID]
	offset := page.Offset()
	if offset >= len(all) {
		return nil, "", nil
	}
	end := offset + page.PageLimit()
	if end > len(all) {
		end = len(all)
	}
	items := all[offset:end]
	return items, page.NextToken(len(items)), nil
}

func (m *mockWorkspaceRepo) Remove(ctx context.Context, companyID, id string) error {
	kept := m.workspaces[companyID][:0]
	for _, ws := range m.workspaces[companyID] {
		if ws.ID != id {
			kept = append(kept, ws)
		}
	}
	m.workspaces[companyID] = kept
	return nil
}

func (m *mockWorkspaceRepo) UpsertUser(ctx context.Context, wu *repository.WorkspaceUser) error {
	m.upsertUserCalls++
	if m.upsertUserFn != nil {
		return m.upsertUserFn(ctx, wu)
	}
	if m.users[wu.WorkspaceID] == nil {
		m.users[wu.WorkspaceID] = make(map[string]*repository.WorkspaceUser)
	}
	if wu.JoinedAt.IsZero() {
		wu.JoinedAt = time.Now()
	}
	m.users[wu.WorkspaceID][wu.UserID] = wu
	return nil
}

func (m *mockWorkspaceRepo) FindUser(ctx context.Context, workspaceID, userID string) (*repository.WorkspaceUser, error) {
	if m.findUserFn != nil {
		return m.findUserFn(ctx, workspaceID, userID)
	}
	if wu, ok := m.users[workspaceID][userID]; ok {
		return wu, nil
	}
	return nil, nil
}

func (m *mockWorkspaceRepo) FindUsers(ctx context.Context, workspaceID string, page types.Pagination) ([]*repository.WorkspaceUser, string, error) {
	var all []*repository.WorkspaceUser
	for _, wu := range m.users[workspaceID] {
		all = append(all, wu)
	}
	offset := page.Offset()
	if offset >= len(all) {
		return nil, "", nil
	}
	end := offset + page.PageLimit()
	if end > len(all) {
		end = len(all)
	}
	items := all[offset:end]
	return items, page.NextToken(len(items)), nil
}

func (m *mockWorkspaceRepo) RemoveUser(ctx context.Context, workspaceID, userID string) error {
	m.removeUserCalls++
	delete(m.users[workspaceID], userID)
	return nil
}

func (m *mockWorkspaceRepo) CountUsers(ctx context.Context, workspaceID string) (int64, error) {
	return int64(len(m.users[workspaceID])), nil
}

func (m *mockWorkspaceRepo) CreatePendingUser(ctx context.Context, pending *repository.WorkspacePendingUser) error {
	if m.pending[pending.WorkspaceID] == nil {
		m.pending[pending.WorkspaceID] = make(map[string]*repository.WorkspacePendingUser)
	}
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now()
	}
	m.pending[pending.WorkspaceID][pending.Email] = pending
	return nil
}

func (m *mockWorkspaceRepo) FindPendingUser(ctx context.Context, workspaceID, email string) (*repository.WorkspacePendingUser, error) {
	if p, ok := m.pending[workspaceID][email]; ok {
		return p, nil
	}
	return nil, nil
}

func (m *mockWorkspaceRepo) FindPendingUsers(ctx context.Context, workspaceID string) ([]*repository.WorkspacePendingUser, error) {
	var all []*repository.WorkspacePendingUser
	for _, p := range m.pending[workspaceID] {
		all = append(all, p)
	}
	return all, nil
}

func (m *mockWorkspaceRepo) RemovePendingUser(ctx context.Context, workspaceID, email string) error {
	delete(m.pending[workspaceID], email)
	return nil
}

func (m *mockWorkspaceRepo) RemovePendingUsersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for workspaceID, byEmail := range m.pending {
		for email, p := range byEmail {
			if p.CreatedAt.Before(cutoff) {
				delete(m.pending[workspaceID], email)
				removed++
			}
		}
	}
	return removed, nil
}

func (m *mockWorkspaceRepo) AllWorkspaceIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for _, workspaces := range m.workspaces {
		for _, ws := range workspaces {
			ids = append(ids, ws.ID)
		}
	}
	return ids, nil
}

// ============================================
// User repository
// ============================================

type mockUserRepo struct {
	byID         map[string]*repository.User
	cacheEntries []*repository.UserCacheEntry

	findByIDFn func(ctx context.Context, id string) (*repository.User, error)
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byID: make(map[string]*repository.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *repository.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(m.byID)+1)
	}
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	for _, u := range m.byID {
		if u.Email == email || u.EmailCanonical == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *repository.User) error {
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) AddCacheEntry(ctx context.Context, entry *repository.UserCacheEntry) error {
	for _, e := range m.cacheEntries {
		if e.UserID == entry.UserID && e.CompanyID == entry.CompanyID && e.WorkspaceID == entry.WorkspaceID {
			return nil
		}
	}
	m.cacheEntries = append(m.cacheEntries, entry)
	return nil
}

func (m *mockUserRepo) FindCacheEntries(ctx context.Context, userID string) ([]*repository.UserCacheEntry, error) {
	var entries []*repository.UserCacheEntry
	for _, e := range m.cacheEntries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// ============================================
// Company repository
// ============================================

type companyUserKey struct {
	companyID string
	userID    string
}

type mockCompanyRepo struct {
	companies    map[string]*repository.Company
	companyUsers map[companyUserKey]*repository.CompanyUser
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{
		companies:    make(map[string]*repository.Company),
		companyUsers: make(map[companyUserKey]*repository.CompanyUser),
	}
}

func (m *mockCompanyRepo) Create(ctx context.Context, company *repository.Company) error {
	if company.ID == "" {
		company.ID = fmt.Sprintf("company-%d", len(m.companies)+1)
	}
	m.companies[company.ID] = company
	return nil
}

func (m *mockCompanyRepo) FindByID(ctx context.Context, id string) (*repository.Company, error) {
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, nil
}

func (m *mockCompanyRepo) FindCompanyUser(ctx context.Context, companyID, userID string) (*repository.CompanyUser, error) {
	if cu, ok := m.companyUsers[companyUserKey{companyID, userID}]; ok {
		return cu, nil
	}
	return nil, nil
}

func (m *mockCompanyRepo) UpsertCompanyUser(ctx context.Context, cu *repository.CompanyUser) error {
	m.companyUsers[companyUserKey{cu.CompanyID, cu.UserID}] = cu
	return nil
}

func (m *mockCompanyRepo) FindCompaniesForUser(ctx context.Context, userID string) ([]*repository.Company, error) {
	var companies []*repository.Company
	for key, cu := range m.companyUsers {
		if cu.UserID == userID {
			companies = append(companies, m.companies[key.companyID])
		}
	}
	return companies, nil
}

// ============================================
// Counter repository
// ============================================

type mockCounterRepo struct {
	values map[repository.CounterKey]int64
}

func newMockCounterRepo() *mockCounterRepo {
	return &mockCounterRepo{values: make(map[repository.CounterKey]int64)}
}

func (m *mockCounterRepo) Get(ctx context.Context, key repository.CounterKey) (int64, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *mockCounterRepo) Add(ctx context.Context, key repository.CounterKey, delta int64) error {
	m.values[key] += delta
	return nil
}

func (m *mockCounterRepo) Set(ctx context.Context, key repository.CounterKey, value int64) error {
	m.values[key] = value
	return nil
}

// ============================================
// Application repository
// ============================================

type mockApplicationRepo struct {
	defaults    []*repository.Application
	companyApps map[string][]*repository.CompanyApplication
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{companyApps: make(map[string][]*repository.CompanyApplication)}
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *repository.Application) error {
	if app.IsDefault {
		m.defaults = append(m.defaults, app)
	}
	return nil
}

func (m *mockApplicationRepo) ListDefaults(ctx context.Context) ([]*repository.Application, error) {
	return m.defaults, nil
}

func (m *mockApplicationRepo) UpsertCompanyApplication(ctx context.Context, ca *repository.CompanyApplication) error {
	for _, existing := range m.companyApps[ca.CompanyID] {
		if existing.ApplicationID == ca.ApplicationID {
			return nil
		}
	}
	m.companyApps[ca.CompanyID] = append(m.companyApps[ca.CompanyID], ca)
	return nil
}

func (m *mockApplicationRepo) ListCompanyApplications(ctx context.Context, companyID string) ([]*repository.CompanyApplication, error) {
	return m.companyApps[companyID], nil
}

func (m *mockApplicationRepo) RemoveCompanyApplication(ctx context.Context, companyID, applicationID string) error {
	kept := m.companyApps[companyID][:0]
	for _, ca := range m.companyApps[companyID] {
		if ca.ApplicationID != applicationID {
			kept = append(kept, ca)
		}
	}
	m.companyApps[companyID] = kept
	return nil
}

// ============================================
// File repository
// ============================================

type fileKey struct {
	companyID string
	id        string
}

type mockFileRepo struct {
	files map[fileKey]*repository.File

	updateCalls int
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[fileKey]*repository.File)}
}

func (m *mockFileRepo) Create(ctx context.Context, file *repository.File) error {
	m.files[fileKey{file.CompanyID, file.ID}] = file
	return nil
}

func (m *mockFileRepo) FindByID(ctx context.Context, companyID, id string) (*repository.File, error) {
	if f, ok := m.files[fileKey{companyID, id}]; ok {
		return f, nil
	}
	return nil, nil
}

func (m *mockFileRepo) Update(ctx context.Context, file *repository.File) error {
	m.updateCalls++
	m.files[fileKey{file.CompanyID, file.ID}] = file
	return nil
}

// ============================================
// Invitation mailer
// ============================================

type sentInvitation struct {
	to   string
	data email.WorkspaceInvitationData
}

type mockMailer struct {
	invitations []sentInvitation
	sendErr     error
}

func (m *mockMailer) SendWorkspaceInvitation(to string, data email.WorkspaceInvitationData) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.invitations = append(m.invitations, sentInvitation{to: to, data: data})
	return nil
}

// ============================================
// Event bus
// ============================================

type publishedEvent struct {
	topic string
	data  json.RawMessage
}

type mockPublisher struct {
	events     []publishedEvent
	publishErr error
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, data interface{}) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.events = append(m.events, publishedEvent{topic: topic, data: raw})
	return nil
}

func (m *mockPublisher) eventsOn(topic string) []publishedEvent {
	var matched []publishedEvent
	for _, ev := range m.events {
		if ev.topic == topic {
			matched = append(matched, ev)
		}
	}
	return matched
}
