package middleware

import (
	"errors"
	"sync"
)

var (
	middlewareInstance Middleware
	once               sync.Once
	initErr            error
)

// New inicializa o singleton do middleware com todas as suas dependências
func New(repository Repository, parser TokenParser) (Middleware, error) {
	once.Do(func() {
		if repository == nil || parser == nil {
			initErr = errors.New("repository and token parser cannot be nil")
			return
		}

		middlewareInstance = NewMiddleware(repository, parser)
	})

	return middlewareInstance, initErr
}
