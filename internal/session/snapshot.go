package session

import "github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"

// Snapshot é o estado de autenticação visto por uma única requisição.
// Nunca é alterado depois de criado.
type Snapshot struct {
	User      *model.User
	IsLoading bool
	Token     string
}

func Loading(token string) Snapshot {
	return Snapshot{IsLoading: true, Token: token}
}

func Anonymous() Snapshot {
	return Snapshot{}
}

func Resolved(u *model.User, token string) Snapshot {
	return Snapshot{User: u, Token: token}
}

// Authenticated informa se a sessão terminou de hidratar com um usuário.
func (s Snapshot) Authenticated() bool {
	return !s.IsLoading && s.User != nil
}
