package commands

import (
	"CampusPortal/internal/cli/bootstrap"
	"CampusPortal/internal/config"
	"context"
	"fmt"
)

type usersCmd struct{}

func (usersCmd) Name() string        { return "users" }
func (usersCmd) Description() string { return "Показать всех пользователей" }
func (usersCmd) Usage() string       { return "users" }

func (usersCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	svc, done, err := bootstrap.OpenUserService(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	list, err := svc.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет пользователей")
		return nil
	}
	for _, u := range list {
		flags := ""
		if u.IsSuperuser {
			flags = " (superuser)"
		} else if !u.IsActive {
			flags = " (inactive)"
		}
		fmt.Fprintf(Out, "- %d  %s  username=%s  type=%s%s\n", u.ID, u.Email, u.Username, u.CampusType, flags)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(usersCmd{}) }
