package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/calcmaster/internal/app"
	"github.com/abhisek/calcmaster/internal/screens/home"
	"github.com/abhisek/calcmaster/internal/store"
)

var practiceCmd = &cobra.Command{
	Use:     "practice",
	Aliases: []string{"play"},
	Short:   "Start a practice session in the terminal",
	RunE:    runPractice,
}

func init() {
	addUserFlag(practiceCmd)
}

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "Local profile to record results under (defaults to $USER)")
}

func runPractice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, dbPath, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	log, err := fileLogger(cfg, dbPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx := cmd.Context()
	username, _ := cmd.Flags().GetString("user")
	user, err := localUser(ctx, st.UserRepo(), username)
	if err != nil {
		return err
	}

	svc, err := newServices(ctx, cfg, st, log, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	return app.Run(app.Options{
		Deps: home.Deps{
			Quizzes:      svc.quizzes,
			Personalizer: svc.personalizer,
			Results:      st.ResultRepo(),
			UserID:       user.ID,
		},
		Username: user.DisplayName,
	})
}

// localUser returns the named profile, creating it on first use. Local
// profiles have no password and cannot log in over HTTP.
func localUser(ctx context.Context, users store.UserRepo, name string) (*store.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "student"
	}

	u, err := users.ByUsername(ctx, name)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("look up user %q: %w", name, err)
	}
	u, err = users.Create(ctx, store.NewUser{
		Username:    name,
		Email:       name + "@local.calcmaster",
		DisplayName: name,
	})
	if err != nil {
		return nil, fmt.Errorf("create local user %q: %w", name, err)
	}
	return u, nil
}
