package main

import (
	"errors"
	"fmt"

	"tendercrm/db"
	"tendercrm/internal/auth"
	"tendercrm/models"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// createAdminCmd создает администратора или повышает существующего пользователя.
func createAdminCmd() *cobra.Command {
	var email, password, fullName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Создать администратора",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = models.NormalizeEmail(email)
			if email == "" {
				return errors.New("--email is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}

			ctx := cmd.Context()
			conn, err := connectDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			store := db.NewStorage(conn)

			existing, err := store.GetUserByEmail(ctx, email)
			switch {
			case err == nil:
				c := db.Changes{"role": models.RoleAdmin}
				if password != "" {
					hash, err := auth.HashPassword(password, cfg.BcryptCost)
					if err != nil {
						return err
					}
					c["password_hash"] = hash
				}
				if _, err := store.UpdateUser(ctx, existing.ID, c); err != nil {
					return err
				}
				log.WithField("email", existing.Email).Info("user promoted to admin")
				return nil
			case !errors.Is(err, db.ErrNotFound):
				return err
			}

			if len(password) < 6 {
				return errors.New("--password must be at least 6 characters")
			}
			hash, err := auth.HashPassword(password, cfg.BcryptCost)
			if err != nil {
				return err
			}
			u := &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin}
			if fullName != "" {
				u.FullName = &fullName
			}
			if err := store.CreateUser(ctx, u); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			log.WithFields(log.Fields{"id": u.ID, "email": u.Email}).Info("admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email администратора")
	cmd.Flags().StringVar(&password, "password", "", "пароль (не короче 6 символов)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "ФИО")
	return cmd
}
