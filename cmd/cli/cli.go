package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/cmd/bootstrap"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/database/admin"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/database/migrations"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/infra/database/postgres"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

type options struct {
	Start      bool
	Stop       bool
	Seed       bool
	Update     bool
	DBCheck    bool
	UserCreate bool
	Name       string
	Email      string
	Password   string
	Tier       string
}

func Execute() error {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		return err
	}

	if !opts.anyOperation() {
		fmt.Println("Nenhuma operação informada. Use --help para listar as opções disponíveis.")
		return nil
	}

	if opts.Stop {
		if err := stopServer(); err != nil {
			return fmt.Errorf("falha ao parar servidor: %w", err)
		}
		fmt.Println("Servidor finalizado com sucesso.")
		return nil
	}

	if err := opts.validate(); err != nil {
		return err
	}

	if err := bootstrap.Environment(); err != nil {
		return err
	}
	logger.Init(viper.GetString("log.level"), viper.GetBool("log.json"))
	defer func() { _ = logger.Sync() }()
	log := logger.Named("cli")
	ctx := context.Background()

	var db *gorm.DB
	if opts.requiresDatabase() {
		db, err = postgres.InitPostgres(ctx, postgres.ConfigFromViper())
		if err != nil {
			return err
		}
		defer postgres.Close()
	}

	manager := migrations.NewManager(db)

	if opts.Seed {
		if err := manager.ApplySeed(ctx); err != nil {
			return fmt.Errorf("falha ao aplicar migrations de seed: %w", err)
		}
		log.Info(ctx, "migrations de seed aplicadas com sucesso")
	}

	if opts.Update {
		if err := manager.ApplyUpdate(ctx); err != nil {
			return fmt.Errorf("falha ao aplicar migrations de atualização: %w", err)
		}
		log.Info(ctx, "migrations de atualização aplicadas com sucesso")
	}

	if opts.UserCreate {
		created, err := user.NewService(user.NewRepository(db)).Create(ctx, user.User{
			Name:     opts.Name,
			Email:    opts.Email,
			Password: opts.Password,
			Tier:     access.Tier(opts.Tier),
		})
		if err != nil {
			return fmt.Errorf("falha ao criar usuário: %w", err)
		}
		log.Info(ctx, "usuário criado",
			zap.String("uuid", created.UUID.String()),
			zap.String("email", created.Email),
			zap.String("tier", created.Tier.String()),
		)
	}

	if opts.DBCheck {
		status, err := admin.Check(ctx, db)
		if err != nil {
			return fmt.Errorf("falha ao checar banco de dados: %w", err)
		}
		log.Info(ctx, "banco de dados ativo",
			zap.Strings("tables", status.Tables),
			zap.Strings("missing", status.Missing),
			zap.Any("users_by_tier", status.Tiers),
		)
		pending, err := manager.Pending(ctx, "update")
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			log.Warn(ctx, "migrations de atualização pendentes", zap.Strings("names", pending))
		}
		if !status.Healthy() {
			return fmt.Errorf("tabelas ausentes: %v", status.Missing)
		}
	}

	if opts.Start {
		if err := startServer(); err != nil {
			return fmt.Errorf("falha ao iniciar servidor: %w", err)
		}
	}

	return nil
}

func parseOptions(args []string) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("pro-career-suite", pflag.ContinueOnError)
	fs.BoolVar(&opts.Start, "start", false, "Inicia o servidor HTTP")
	fs.BoolVar(&opts.Stop, "stop", false, "Finaliza o servidor HTTP")
	fs.BoolVar(&opts.Seed, "migration-seed", false, "Aplica migrations de seed")
	fs.BoolVar(&opts.Update, "migration-update", false, "Aplica migrations de atualização")
	fs.BoolVar(&opts.DBCheck, "db-check", false, "Checa status do banco de dados")
	fs.BoolVar(&opts.UserCreate, "user-create", false, "Cria um usuário (use com --name, --email, --password, --tier)")
	fs.StringVar(&opts.Name, "name", "", "Nome do usuário")
	fs.StringVar(&opts.Email, "email", "", "Email do usuário")
	fs.StringVar(&opts.Password, "password", "", "Senha do usuário")
	fs.StringVar(&opts.Tier, "tier", string(access.TierFree), "Tier do usuário (free, pro, premium, admin)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	return opts, nil
}

func (o options) anyOperation() bool {
	return o.Start || o.Stop || o.Seed || o.Update || o.DBCheck || o.UserCreate
}

func (o options) requiresDatabase() bool {
	return o.Seed || o.Update || o.DBCheck || o.UserCreate
}

func (o options) validate() error {
	if !o.UserCreate {
		return nil
	}
	if o.Email == "" || o.Password == "" {
		return errors.New("--user-create exige --email e --password")
	}
	if _, err := access.ParseTier(o.Tier); err != nil {
		return fmt.Errorf("--tier: %w", err)
	}
	return nil
}
