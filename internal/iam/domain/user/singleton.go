package user

import (
	"errors"
	"sync"
)

var (
	controllerInstance Controller
	serviceInstance    Service
	repositoryInstance Repository
	once               sync.Once
	initErr            error
	ErrNotInitialized  = errors.New("user controller not initialized")
)

type UseUser struct {
	Repository Repository
	Service    Service
	Controller Controller
}

// New inicializa o singleton com o repositório recebido (gorm ou memória).
func New(repository Repository) (Controller, error) {
	once.Do(func() {
		if repository == nil {
			initErr = errors.New("user repository cannot be nil")
			return
		}

		// Inicializa as dependências em camadas
		repositoryInstance = repository
		serviceInstance = NewService(repositoryInstance)
		controllerInstance = NewController(serviceInstance)
	})

	return controllerInstance, initErr
}

func MustUse() *UseUser {
	if controllerInstance == nil || serviceInstance == nil || repositoryInstance == nil {
		panic(ErrNotInitialized)
	}
	return &UseUser{
		Repository: repositoryInstance,
		Service:    serviceInstance,
		Controller: controllerInstance,
	}
}
