package access

import "strings"

// Tier identifica o nível de assinatura do usuário.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
	TierAdmin   Tier = "admin"
)

// TierNone indica ausência de requisito de tier.
const TierNone Tier = ""

// rankTable é a única fonte de verdade da ordem entre tiers.
var rankTable = map[Tier]int{
	TierFree:    1,
	TierPro:     2,
	TierPremium: 3,
	TierAdmin:   4,
}

var AllValidTiers = []string{
	string(TierFree),
	string(TierPro),
	string(TierPremium),
	string(TierAdmin),
}

// Rank retorna a posição ordinal do tier. Tiers desconhecidos valem 0.
func Rank(t Tier) int {
	return rankTable[t]
}

// Valid informa se o tier pertence ao conjunto enumerado.
func (t Tier) Valid() bool {
	_, ok := rankTable[t]
	return ok
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier normaliza espaços e valida o literal. Retorna ErrInvalidTier para
// qualquer valor fora de {free, pro, premium, admin}.
func ParseTier(raw string) (Tier, error) {
	t := Tier(strings.TrimSpace(raw))
	if !t.Valid() {
		return TierNone, ErrInvalidTier
	}
	return t, nil
}

// HasRequiredTier compara os ranks dos dois lados. Entradas inválidas nunca
// geram erro: valem rank 0 e falham qualquer requisito real.
func HasRequiredTier(userTier, requiredTier string) bool {
	return Satisfies(Tier(userTier), Tier(requiredTier))
}

// Satisfies é a versão tipada de HasRequiredTier.
func Satisfies(user, required Tier) bool {
	return Rank(user) >= Rank(required)
}
