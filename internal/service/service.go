package service

import (
	"errors"

	"github.com/4seer/Twake/internal/config"
	"github.com/4seer/Twake/internal/counter"
	"github.com/4seer/Twake/internal/email"
	"github.com/4seer/Twake/internal/pubsub"
	"github.com/4seer/Twake/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrBadRequest         = errors.New("bad request")
	ErrPendingUserExists  = errors.New("user is pending already")
	ErrUnimplemented      = errors.New("method not implemented")
	ErrInvalidInput       = errors.New("invalid input")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth        AuthService
	User        UserService
	Company     CompanyService
	Workspace   WorkspaceService
	Application ApplicationService
	Message     MessageService
	File        FileService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Counter  *counter.Provider
	Bus      pubsub.Publisher
	EmailSvc *email.Service
}

func NewServices(deps *ServiceDeps) *Services {
	userService := NewUserService(deps.Repos.UserRepo)
	companyService := NewCompanyService(deps.Repos.CompanyRepo)
	applicationService := NewApplicationService(deps.Repos.ApplicationRepo)

	// A nil *email.Service stays a nil interface so the send path is skipped
	// when SMTP is not configured.
	var mailer InvitationMailer
	if deps.EmailSvc != nil {
		mailer = deps.EmailSvc
	}

	workspaceService := NewWorkspaceService(
		deps.Repos.WorkspaceRepo,
		deps.Repos.UserRepo,
		deps.Repos.CompanyRepo,
		applicationService,
		deps.Counter,
		deps.Bus,
		mailer,
		deps.Config.FrontendURL,
	)

	return &Services{
		Auth:        NewAuthService(deps.Config, deps.Repos.UserRepo),
		User:        userService,
		Company:     companyService,
		Workspace:   workspaceService,
		Application: applicationService,
		Message:     NewMessageService(deps.Repos.MessageRepo, deps.Bus),
		File:        NewFileService(deps.Repos.FileRepo),
	}
}
