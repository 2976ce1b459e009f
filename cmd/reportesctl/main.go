// reportesctl reúne tareas administrativas que operan directo sobre el almacén:
// alta del primer administrador y resincronización de perfiles.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Reportes-api/internal/application/auth"
	"github.com/jhoicas/Reportes-api/internal/application/dto"
	"github.com/jhoicas/Reportes-api/internal/application/profile"
	"github.com/jhoicas/Reportes-api/internal/domain/entity"
	"github.com/jhoicas/Reportes-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/Reportes-api/pkg/config"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

type app struct {
	cfg       *config.Config
	log       *logger.Logger
	store     *mongodb.Store
	projector *profile.Projector
	auth      *auth.AuthUseCase
}

func main() {
	var (
		a       = &app{}
		timeout = 2 * time.Minute
		level   = "warn"
	)

	root := &cobra.Command{
		Use:           "reportesctl",
		Short:         "Tareas administrativas de la API de reportes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(logger.Config{Env: "development", Level: level})

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			cmd.SetContext(ctx)
			cobra.OnFinalize(cancel)

			store, err := mongodb.Connect(ctx, cfg.Mongo, a.log)
			if err != nil {
				return err
			}
			a.store = store
			users := mongodb.NewUserRepository(store)
			a.projector = profile.NewProjector(users, mongodb.NewProfileRepository(store), a.log)
			a.auth = auth.NewAuthUseCase(users, a.projector, auth.JWTConfig{
				Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
			}, a.log)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close(context.Background())
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "Tiempo máximo de la operación")
	root.PersistentFlags().StringVar(&level, "log-level", level, "Nivel de log: debug|info|warn|error")

	root.AddCommand(crearAdminCmd(a), sincronizarPerfilesCmd(a), crearIndicesCmd(a))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func crearAdminCmd(a *app) *cobra.Command {
	var nombre, email, password string
	cmd := &cobra.Command{
		Use:   "crear-admin",
		Short: "Registrar una cuenta con rol administrador",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			if nombre == "" {
				nombre = auth.NameFromEmail(email)
			}
			user, err := a.auth.RegisterUser(cmd.Context(), dto.RegisterRequest{
				Nombre:   nombre,
				Email:    email,
				Password: password,
				Rol:      entity.RoleAdministrador,
			})
			if err != nil {
				return err
			}
			if err := a.projector.Reconcile(cmd.Context(), user); err != nil {
				a.log.Warn().Err(err).Msg("perfil no sincronizado; se creará en la primera lectura")
			}
			fmt.Printf("administrador creado: %s (%s)\n", user.String(entity.FieldEmail), user[entity.FieldID])
			return nil
		},
	}
	cmd.Flags().StringVar(&nombre, "nombre", "", "Nombre visible (por defecto se deriva del email)")
	cmd.Flags().StringVar(&email, "email", "", "Email de la cuenta")
	cmd.Flags().StringVar(&password, "password", os.Getenv("REPORTES_ADMIN_PASSWORD"), "Contraseña (env REPORTES_ADMIN_PASSWORD)")
	return cmd
}

func sincronizarPerfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sincronizar-perfiles",
		Short: "Reconstruir la proyección de perfil de todos los usuarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			synced, failed, err := a.projector.SyncAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("perfiles sincronizados: %d, con error: %d\n", synced, failed)
			if failed > 0 {
				return fmt.Errorf("%d perfiles no se pudieron sincronizar", failed)
			}
			return nil
		},
	}
}

func crearIndicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crear-indices",
		Short: "Crear los índices únicos de email y el de fecha de reportes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.EnsureIndexes(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("índices creados")
			return nil
		},
	}
}
