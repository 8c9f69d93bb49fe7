package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	UserRepo        UserRepository
	CompanyRepo     CompanyRepository
	WorkspaceRepo   WorkspaceRepository
	CounterRepo     CounterRepository
	ApplicationRepo ApplicationRepository
	FileRepo        FileRepository
	MessageRepo     MessageRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:        NewUserRepository(pool),
		CompanyRepo:     NewCompanyRepository(pool),
		WorkspaceRepo:   NewWorkspaceRepository(pool),
		CounterRepo:     NewCounterRepository(pool),
		ApplicationRepo: NewApplicationRepository(pool),
		FileRepo:        NewFileRepository(pool),
		MessageRepo:     NewMessageRepository(pool),
	}
}
