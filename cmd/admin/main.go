// Command admin runs maintenance tasks against the configured store:
//
//	admin seed-services
//	admin create-admin -email admin@lk.com -password admin123
//	admin make-admin <email>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/localkart/homeservices-api/internal/app"
	"github.com/localkart/homeservices-api/internal/config"
	"github.com/localkart/homeservices-api/internal/observability"
	"github.com/localkart/homeservices-api/internal/services"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <seed-services | create-admin | make-admin <email>>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := observability.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, nil, log)
	if err != nil {
		log.Error("store init failed", "err", err)
		os.Exit(1)
	}
	defer stores.Close(context.Background())

	auth, _, catalog := app.NewServices(cfg, stores, nil, log)

	if err := run(ctx, os.Args[1], os.Args[2:], auth, catalog, log); err != nil {
		log.Error("command failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, auth *services.AuthService, catalog *services.CatalogService, log *slog.Logger) error {
	switch cmd {
	case "seed-services":
		n, err := catalog.SeedIfEmpty(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("inserted %d services\n", n)
		return nil

	case "create-admin":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "Admin", "display name")
		email := fs.String("email", "admin@lk.com", "login email")
		phone := fs.String("phone", "0000000000", "contact phone")
		password := fs.String("password", "admin123", "login password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		user, created, err := auth.CreateAdmin(ctx, services.RegisterInput{
			Name: *name, Email: *email, Phone: *phone, Password: *password,
		})
		if err != nil {
			return err
		}
		if !created {
			fmt.Printf("user %s already exists (role %s)\n", user.Email, user.Role)
			return nil
		}
		log.Info("admin created", "email", user.Email)
		fmt.Printf("admin %s created\n", user.Email)
		return nil

	case "make-admin":
		if len(args) != 1 {
			usage()
			return fmt.Errorf("make-admin takes exactly one email")
		}
		if err := auth.PromoteToAdmin(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("%s is now an admin\n", args[0])
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}
