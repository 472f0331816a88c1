// opstoken mints a bearer token for the ops HTTP API, signed with the configured
// JWT secret.
//
//	opstoken [--config configs/config.yaml] [--subject operator] [--role ADMIN] [--ttl 1h]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/config"
	"github.com/yigit/bgrs/internal/pkg/auth"
	"github.com/yigit/bgrs/internal/pkg/helpers"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		configPath string
		subject    string
		role       string
		ttl        time.Duration
	)

	flagSet := pflag.NewFlagSet("opstoken", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", filepath.Join("configs", "config.yaml"), "path to the YAML config file")
	flagSet.StringVar(&subject, "subject", "operator", "username carried by the token")
	flagSet.StringVar(&role, "role", string(models.RoleAdministrator), "role claim (ADMIN or STUDENT)")
	flagSet.DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to jwt.access_token_expiration)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if !models.RoleType(role).Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("no JWT secret configured (set jwt.secret or %sJWT_SECRET)", config.EnvPrefix)
	}
	if ttl <= 0 {
		ttl = helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: ttl,
		TokenIssuer:    cfg.JWT.Issuer,
	})
	token, expiresAt, err := jwtService.GenerateToken(subject, role)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
