package access

// Paths centraliza os destinos de navegação usados pelos guards e pelo login.
type Paths struct {
	Login     string
	Upgrade   string
	Dashboard string
	Admin     string
}

func DefaultPaths() Paths {
	return Paths{
		Login:     "/auth",
		Upgrade:   "/upgrade",
		Dashboard: "/dashboard",
		Admin:     "/admin",
	}
}

// WithDefaults preenche campos vazios com os valores padrão.
func (p Paths) WithDefaults() Paths {
	d := DefaultPaths()
	if p.Login == "" {
		p.Login = d.Login
	}
	if p.Upgrade == "" {
		p.Upgrade = d.Upgrade
	}
	if p.Dashboard == "" {
		p.Dashboard = d.Dashboard
	}
	if p.Admin == "" {
		p.Admin = d.Admin
	}
	return p
}

// Subject é qualquer entidade que carrega um tier.
type Subject interface {
	AccessTier() Tier
}

// HomeRouteForUser escolhe a página inicial após o login.
func HomeRouteForUser(s Subject, paths Paths) string {
	paths = paths.WithDefaults()
	if s == nil {
		return paths.Login
	}
	switch s.AccessTier() {
	case TierAdmin:
		return paths.Admin
	default:
		return paths.Dashboard
	}
}
