package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const attemptWindow = 5 * time.Minute

// LoginAttempts conta falhas de login por email dentro de uma janela.
var LoginAttempts = cache.New(attemptWindow, 10*time.Minute)

func RegisterFailure(email string) int {
	if err := LoginAttempts.Add(email, 1, attemptWindow); err == nil {
		return 1
	}
	n, err := LoginAttempts.IncrementInt(email, 1)
	if err != nil {
		// A entrada expirou entre Add e Increment.
		LoginAttempts.Set(email, 1, attemptWindow)
		return 1
	}
	return n
}

func Failures(email string) int {
	v, found := LoginAttempts.Get(email)
	if !found {
		return 0
	}
	return v.(int)
}

func Reset(email string) {
	LoginAttempts.Delete(email)
}
