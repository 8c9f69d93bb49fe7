package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/4seer/Twake/internal/counter"
	"github.com/4seer/Twake/internal/email"
	"github.com/4seer/Twake/internal/pubsub"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/types"
)

// ============================================
// Workspace Service
// ============================================

// WorkspacePrimaryKey identifies a workspace within its company.
type WorkspacePrimaryKey struct {
	CompanyID string
	ID        string
}

// SaveResult reports whether Save created or updated the workspace.
type SaveResult struct {
	Workspace *repository.Workspace
	Created   bool
}

// InvitationMailer sends workspace invitation emails.
type InvitationMailer interface {
	SendWorkspaceInvitation(to string, data email.WorkspaceInvitationData) error
}

type WorkspaceService interface {
	Get(ctx context.Context, pk WorkspacePrimaryKey) (*repository.Workspace, error)
	Create(ctx context.Context, workspace *repository.Workspace, ec types.ExecutionContext) (*repository.Workspace, error)
	Save(ctx context.Context, item *repository.Workspace, ec types.ExecutionContext) (*SaveResult, error)
	Update(ctx context.Context, pk WorkspacePrimaryKey, item *repository.Workspace, ec types.ExecutionContext) error
	Delete(ctx context.Context, id string, ec types.ExecutionContext) error
	List(ctx context.Context, page types.Pagination, ec types.ExecutionContext) ([]*repository.Workspace, string, error)
	GetAllForCompany(ctx context.Context, companyID string) ([]*repository.Workspace, error)

	AddUser(ctx context.Context, pk WorkspacePrimaryKey, userID, role string) error
	UpdateUserRole(ctx context.Context, workspaceID, userID, role string) error
	RemoveUser(ctx context.Context, workspaceID, userID string) error
	GetUser(ctx context.Context, workspaceID, userID string) (*repository.WorkspaceUser, error)
	GetUsers(ctx context.Context, workspaceID string, page types.Pagination) ([]*repository.WorkspaceUser, string, error)
	AllUsers(ctx context.Context, workspaceID string) (<-chan *repository.WorkspaceUser, <-chan error)
	GetUsersCount(ctx context.Context, workspaceID string) (int64, error)

	AddPendingUser(ctx context.Context, workspaceID, emailAddr, workspaceRole, companyRole string) error
	GetPendingUser(ctx context.Context, workspaceID, emailAddr string) (*repository.WorkspacePendingUser, error)
	GetPendingUsers(ctx context.Context, workspaceID string) ([]*repository.WorkspacePendingUser, error)
	RemovePendingUser(ctx context.Context, workspaceID, emailAddr string) error
	ProcessPendingUser(ctx context.Context, user *repository.User) error
	GetAllForUser(ctx context.Context, userID, companyID string) ([]*repository.WorkspaceUser, error)
}

type workspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	companyRepo   repository.CompanyRepository
	applications  ApplicationService
	counters      *counter.Provider
	bus           pubsub.Publisher
	emailSvc      InvitationMailer
	frontendURL   string
}

func NewWorkspaceService(
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	applications ApplicationService,
	counters *counter.Provider,
	bus pubsub.Publisher,
	emailSvc InvitationMailer,
	frontendURL string,
) WorkspaceService {
	s := &workspaceService{
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		companyRepo:   companyRepo,
		applications:  applications,
		counters:      counters,
		bus:           bus,
		emailSvc:      emailSvc,
		frontendURL:   frontendURL,
	}

	// Member counters are a cache over workspace_users rows; this hook is the
	// correction mechanism for drift from the non-transactional fast path.
	counters.ReviseCounter(func(ctx context.Context, key repository.CounterKey) (int64, error) {
		return workspaceRepo.CountUsers(ctx, key.ID)
	})

	return s
}

func (s *workspaceService) Get(ctx context.Context, pk WorkspacePrimaryKey) (*repository.Workspace, error) {
	return s.workspaceRepo.FindByID(ctx, pk.CompanyID, pk.ID)
}

func (s *workspaceService) Create(ctx context.Context, workspace *repository.Workspace, ec types.ExecutionContext) (*repository.Workspace, error) {
	name, err := s.workspaceName(ctx, workspace.Name, workspace.CompanyID)
	if err != nil {
		return nil, err
	}

	toCreate := &repository.Workspace{
		CompanyID:  workspace.CompanyID,
		Name:       name,
		Logo:       workspace.Logo,
		IsDefault:  workspace.IsDefault,
		IsArchived: false,
		IsDeleted:  false,
		DateAdded:  time.Now(),
	}

	result, err := s.Save(ctx, toCreate, types.ServerContext(workspace.CompanyID, ec.User.ID))
	if err != nil {
		return nil, err
	}

	if err := s.applications.InitWithDefaultApplications(ctx, result.Workspace.CompanyID, types.ServerContext(result.Workspace.CompanyID, ec.User.ID)); err != nil {
		return nil, err
	}

	return result.Workspace, nil
}

// Save is the dual-purpose create/update path. Only name, logo, isArchived
// and isDefault are updatable through it.
func (s *workspaceService) Save(ctx context.Context, item *repository.Workspace, ec types.ExecutionContext) (*SaveResult, error) {
	companyID := ec.CompanyID
	if ec.User.ServerRequest && item.CompanyID != "" {
		companyID = item.CompanyID
	}

	isNew := item.ID == ""

	workspace := &repository.Workspace{
		ID:         item.ID,
		CompanyID:  companyID,
		IsArchived: false,
		IsDefault:  false,
		DateAdded:  time.Now(),
	}
	if workspace.ID == "" {
		workspace.ID = uuid.NewString()
	}

	if !isNew && !ec.User.ServerRequest {
		existing, err := s.workspaceRepo.FindByID(ctx, ec.CompanyID, item.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("unable to edit inexistent workspace %s: %w", item.ID, ErrNotFound)
		}
		workspace = existing
	}

	name, err := s.workspaceName(ctx, item.Name, companyID)
	if err != nil {
		return nil, err
	}
	workspace.Name = name
	if item.Logo != nil {
		workspace.Logo = item.Logo
	}
	workspace.IsArchived = item.IsArchived
	workspace.IsDefault = item.IsDefault

	if err := s.workspaceRepo.Save(ctx, workspace); err != nil {
		return nil, err
	}

	if isNew && ec.User.ID != "" {
		pk := WorkspacePrimaryKey{CompanyID: workspace.CompanyID, ID: workspace.ID}
		if err := s.AddUser(ctx, pk, ec.User.ID, types.RoleModerator); err != nil {
			return nil, err
		}
	}

	if isNew {
		if err := s.bus.Publish(ctx, pubsub.TopicWorkspaceAdded, pubsub.WorkspaceAddedEvent{
			CompanyID:   workspace.CompanyID,
			WorkspaceID: workspace.ID,
		}); err != nil {
			log.Printf("[Workspace] Failed to publish %s: %v", pubsub.TopicWorkspaceAdded, err)
		}
	}

	return &SaveResult{Workspace: workspace, Created: isNew}, nil
}

func (s *workspaceService) Update(ctx context.Context, pk WorkspacePrimaryKey, item *repository.Workspace, ec types.ExecutionContext) error {
	return ErrUnimplemented
}

// Delete removes by primary key and always reports success, without checking
// that the workspace existed.
func (s *workspaceService) Delete(ctx context.Context, id string, ec types.ExecutionContext) error {
	if err := s.workspaceRepo.Remove(ctx, ec.CompanyID, id); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, pubsub.TopicWorkspaceDeleted, pubsub.WorkspaceDeletedEvent{
		CompanyID:   ec.CompanyID,
		WorkspaceID: id,
	}); err != nil {
		log.Printf("[Workspace] Failed to publish %s: %v", pubsub.TopicWorkspaceDeleted, err)
	}
	return nil
}

func (s *workspaceService) List(ctx context.Context, page types.Pagination, ec types.ExecutionContext) ([]*repository.Workspace, string, error) {
	return s.workspaceRepo.List(ctx, ec.CompanyID, page)
}

// GetAllForCompany drains every page of the company's workspaces. A company
// with none gets a default "Home" workspace provisioned on first access.
func (s *workspaceService) GetAllForCompany(ctx context.Context, companyID string) ([]*repository.Workspace, error) {
	var all []*repository.Workspace
	page := types.Pagination{Limit: types.DefaultPageLimit}
	for {
		workspaces, next, err := s.workspaceRepo.List(ctx, companyID, page)
		if err != nil {
			return nil, err
		}
		all = append(all, workspaces...)
		if next == "" {
			break
		}
		page.PageToken = next
	}

	if len(all) == 0 {
		created, err := s.Create(ctx, &repository.Workspace{
			CompanyID: companyID,
			Name:      "Home",
			IsDefault: true,
		}, types.ServerContext(companyID, ""))
		if err != nil {
			return nil, err
		}
		all = append(all, created)
	}

	return all, nil
}

// AddUser is an idempotent membership upsert. The counter increment happens
// before the edge write and the two are not transactional; the revise hook
// corrects any drift a failure in between leaves behind.
func (s *workspaceService) AddUser(ctx context.Context, pk WorkspacePrimaryKey, userID, role string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.AddCacheEntry(ctx, &repository.UserCacheEntry{
		UserID:      userID,
		CompanyID:   pk.CompanyID,
		WorkspaceID: pk.ID,
	}); err != nil {
		return err
	}

	existing, err := s.workspaceRepo.FindUser(ctx, pk.ID, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := s.counters.Increase(ctx, s.membersCounterKey(pk.ID), 1); err != nil {
			return err
		}
	}

	if err := s.workspaceRepo.UpsertUser(ctx, &repository.WorkspaceUser{
		WorkspaceID: pk.ID,
		UserID:      userID,
		Role:        role,
	}); err != nil {
		return err
	}

	// Published even when the edge already existed.
	if err := s.bus.Publish(ctx, pubsub.TopicWorkspaceMemberAdded, pubsub.WorkspaceMemberAddedEvent{
		CompanyID:   pk.CompanyID,
		WorkspaceID: pk.ID,
		UserID:      userID,
	}); err != nil {
		log.Printf("[Workspace] Failed to publish %s: %v", pubsub.TopicWorkspaceMemberAdded, err)
	}

	return nil
}

func (s *workspaceService) UpdateUserRole(ctx context.Context, workspaceID, userID, role string) error {
	workspaceUser, err := s.workspaceRepo.FindUser(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if workspaceUser == nil {
		return ErrNotFound
	}
	workspaceUser.Role = role
	if err := s.workspaceRepo.UpsertUser(ctx, workspaceUser); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, pubsub.TopicWorkspaceMemberUpdated, pubsub.WorkspaceMemberUpdatedEvent{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}); err != nil {
		log.Printf("[Workspace] Failed to publish %s: %v", pubsub.TopicWorkspaceMemberUpdated, err)
	}
	return nil
}

// checkWorkspaceHasOtherAdmin should verify a workspace keeps at least one
// admin after a removal. Company admins and owners are always workspace
// admins.
// TODO: implement the check; it currently always passes.
func (s *workspaceService) checkWorkspaceHasOtherAdmin(ctx context.Context, workspaceID, userID string) (bool, error) {
	return true, nil
}

func (s *workspaceService) RemoveUser(ctx context.Context, workspaceID, userID string) error {
	workspaceUser, err := s.workspaceRepo.FindUser(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if workspaceUser == nil {
		return ErrNotFound
	}

	ok, err := s.checkWorkspaceHasOtherAdmin(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no other admin found in workspace: %w", ErrNotFound)
	}

	if err := s.workspaceRepo.RemoveUser(ctx, workspaceID, userID); err != nil {
		return err
	}
	if err := s.counters.Increase(ctx, s.membersCounterKey(workspaceID), -1); err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, pubsub.TopicWorkspaceMemberRemoved, pubsub.WorkspaceMemberRemovedEvent{
		WorkspaceID: workspaceID,
		UserID:      userID,
	}); err != nil {
		log.Printf("[Workspace] Failed to publish %s: %v", pubsub.TopicWorkspaceMemberRemoved, err)
	}
	return nil
}

func (s *workspaceService) GetUser(ctx context.Context, workspaceID, userID string) (*repository.WorkspaceUser, error) {
	return s.workspaceRepo.FindUser(ctx, workspaceID, userID)
}

func (s *workspaceService) GetUsers(ctx context.Context, workspaceID string, page types.Pagination) ([]*repository.WorkspaceUser, string, error) {
	return s.workspaceRepo.FindUsers(ctx, workspaceID, page)
}

// AllUsers streams every member of the workspace, draining pages lazily. The
// items channel is closed when the stream ends; a failure is reported on the
// error channel and ends the stream early.
func (s *workspaceService) AllUsers(ctx context.Context, workspaceID string) (<-chan *repository.WorkspaceUser, <-chan error) {
	items := make(chan *repository.WorkspaceUser)
	errc := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errc)

		page := types.Pagination{Limit: types.DefaultPageLimit}
		for {
			users, next, err := s.workspaceRepo.FindUsers(ctx, workspaceID, page)
			if err != nil {
				errc <- err
				return
			}
			for _, wu := range users {
				select {
				case items <- wu:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
			if next == "" {
				return
			}
			page.PageToken = next
		}
	}()

	return items, errc
}

func (s *workspaceService) GetUsersCount(ctx context.Context, workspaceID string) (int64, error) {
	return s.counters.Get(ctx, s.membersCounterKey(workspaceID))
}

func (s *workspaceService) AddPendingUser(ctx context.Context, workspaceID, emailAddr, workspaceRole, companyRole string) error {
	existing, err := s.workspaceRepo.FindPendingUser(ctx, workspaceID, emailAddr)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrPendingUserExists
	}

	if err := s.workspaceRepo.CreatePendingUser(ctx, &repository.WorkspacePendingUser{
		WorkspaceID: workspaceID,
		Email:       emailAddr,
		Role:        workspaceRole,
		CompanyRole: companyRole,
	}); err != nil {
		return err
	}

	s.sendInvitationEmail(ctx, workspaceID, emailAddr)
	return nil
}

// sendInvitationEmail is best-effort: failures are logged, never propagated.
func (s *workspaceService) sendInvitationEmail(ctx context.Context, workspaceID, emailAddr string) {
	if s.emailSvc == nil {
		return
	}

	workspaceName := "your workspace"
	workspace, err := s.workspaceRepo.FindByWorkspaceID(ctx, workspaceID)
	if err != nil {
		log.Printf("[Workspace] Failed to resolve workspace %s for invitation email: %v", workspaceID, err)
	} else if workspace != nil {
		workspaceName = workspace.Name
	}

	data := email.WorkspaceInvitationData{
		WorkspaceName: workspaceName,
		InviteURL:     fmt.Sprintf("%s/join/%s", s.frontendURL, workspaceID),
	}
	if err := s.emailSvc.SendWorkspaceInvitation(emailAddr, data); err != nil {
		log.Printf("[Workspace] Failed to send invitation email to %s: %v", emailAddr, err)
	}
}

func (s *workspaceService) GetPendingUser(ctx context.Context, workspaceID, emailAddr string) (*repository.WorkspacePendingUser, error) {
	return s.workspaceRepo.FindPendingUser(ctx, workspaceID, emailAddr)
}

func (s *workspaceService) GetPendingUsers(ctx context.Context, workspaceID string) ([]*repository.WorkspacePendingUser, error) {
	return s.workspaceRepo.FindPendingUsers(ctx, workspaceID)
}

func (s *workspaceService) RemovePendingUser(ctx context.Context, workspaceID, emailAddr string) error {
	pending, err := s.workspaceRepo.FindPendingUser(ctx, workspaceID, emailAddr)
	if err != nil {
		return err
	}
	if pending == nil {
		return ErrNotFound
	}
	return s.workspaceRepo.RemovePendingUser(ctx, workspaceID, emailAddr)
}

// ProcessPendingUser converts every pending invitation matching the user's
// canonical email into a real membership. The scan is O(companies ×
// workspaces) per user.
func (s *workspaceService) ProcessPendingUser(ctx context.Context, user *repository.User) error {
	companies, err := s.companyRepo.FindCompaniesForUser(ctx, user.ID)
	if err != nil {
		return err
	}

	for _, company := range companies {
		workspaces, err := s.GetAllForCompany(ctx, company.ID)
		if err != nil {
			return err
		}
		for _, workspace := range workspaces {
			pending, err := s.workspaceRepo.FindPendingUser(ctx, workspace.ID, user.EmailCanonical)
			if err != nil {
				return err
			}
			if pending == nil {
				continue
			}
			if err := s.workspaceRepo.RemovePendingUser(ctx, workspace.ID, user.EmailCanonical); err != nil {
				return err
			}
			pk := WorkspacePrimaryKey{CompanyID: workspace.CompanyID, ID: workspace.ID}
			if err := s.AddUser(ctx, pk, user.ID, pending.Role); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetAllForUser resolves pending invitations first, then returns the user's
// membership edges in the company. A user with no membership at all is
// auto-enrolled into every default workspace, except guests.
func (s *workspaceService) GetAllForUser(ctx context.Context, userID, companyID string) ([]*repository.WorkspaceUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.ProcessPendingUser(ctx, user); err != nil {
		return nil, err
	}

	allCompanyWorkspaces, err := s.GetAllForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var userWorkspaces []*repository.WorkspaceUser
	for _, workspace := range allCompanyWorkspaces {
		wu, err := s.workspaceRepo.FindUser(ctx, workspace.ID, userID)
		if err != nil {
			return nil, err
		}
		if wu != nil {
			userWorkspaces = append(userWorkspaces, wu)
		}
	}

	if len(userWorkspaces) > 0 {
		return userWorkspaces, nil
	}

	for _, workspace := range allCompanyWorkspaces {
		if !workspace.IsDefault || workspace.IsArchived || workspace.IsDeleted {
			continue
		}

		// Enrollment failures are logged and skipped so remaining default
		// workspaces are still attempted.
		wu, err := s.enrollInDefaultWorkspace(ctx, workspace, userID, companyID)
		if err != nil {
			log.Printf("[Workspace] Failed to enroll user %s in default workspace %s: %v", userID, workspace.ID, err)
			continue
		}
		if wu != nil {
			userWorkspaces = append(userWorkspaces, wu)
		}
	}

	return userWorkspaces, nil
}

func (s *workspaceService) enrollInDefaultWorkspace(ctx context.Context, workspace *repository.Workspace, userID, companyID string) (*repository.WorkspaceUser, error) {
	companyUser, err := s.companyRepo.FindCompanyUser(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if companyUser == nil {
		return nil, ErrUserNotFound
	}
	if companyUser.Role == types.CompanyRoleGuest {
		return nil, nil
	}

	// The workspace role mirrors the company role in default workspaces.
	role := types.RoleMember
	if companyUser.Role == types.CompanyRoleAdmin || companyUser.Role == types.CompanyRoleOwner {
		role = types.RoleModerator
	}

	pk := WorkspacePrimaryKey{CompanyID: workspace.CompanyID, ID: workspace.ID}
	if err := s.AddUser(ctx, pk, userID, role); err != nil {
		return nil, err
	}
	return s.workspaceRepo.FindUser(ctx, workspace.ID, userID)
}

// workspaceName returns a name that does not collide within the company.
// The collision check is substring containment, not exact match, so k
// matches yield "name(k+1)". Concurrent creations can still race; duplicate
// suffixes are tolerated rather than serialized.
func (s *workspaceService) workspaceName(ctx context.Context, exceptedName, companyID string) (string, error) {
	var duplicates int
	page := types.Pagination{Limit: types.DefaultPageLimit}
	for {
		workspaces, next, err := s.workspaceRepo.List(ctx, companyID, page)
		if err != nil {
			return "", err
		}
		for _, ws := range workspaces {
			if strings.Contains(ws.Name, exceptedName) {
				duplicates++
			}
		}
		if next == "" {
			break
		}
		page.PageToken = next
	}

	if duplicates == 0 {
		return exceptedName, nil
	}
	return fmt.Sprintf("%s(%d)", exceptedName, duplicates+1), nil
}

func (s *workspaceService) membersCounterKey(workspaceID string) repository.CounterKey {
	return repository.CounterKey{ID: workspaceID, CounterType: types.CounterTypeMembers}
}
