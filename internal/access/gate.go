package access

// Verdict é o resultado da avaliação de um fragmento condicionado a tier.
type Verdict uint8

const (
	Denied Verdict = iota
	Allowed
)

func (v Verdict) String() string {
	if v == Allowed {
		return "allowed"
	}
	return "denied"
}

// Evaluate decide se o tier do usuário libera o fragmento.
func Evaluate(user, required Tier) Verdict {
	if Satisfies(user, required) {
		return Allowed
	}
	return Denied
}

// ShowForTier renderiza exatamente um dos ramos: children quando o tier é
// suficiente, fallback caso contrário. Sem fallback o resultado é o valor zero.
func ShowForTier[T any](user, required Tier, children, fallback func() T) T {
	var zero T
	switch Evaluate(user, required) {
	case Allowed:
		if children == nil {
			return zero
		}
		return children()
	default:
		if fallback == nil {
			return zero
		}
		return fallback()
	}
}

// Gate expõe a avaliação para templates: {{ if .Access.Allows "pro" }}.
type Gate struct {
	Tier Tier
}

func NewGate(t Tier) Gate {
	return Gate{Tier: t}
}

func (g Gate) Allows(required string) bool {
	return Evaluate(g.Tier, Tier(required)) == Allowed
}
