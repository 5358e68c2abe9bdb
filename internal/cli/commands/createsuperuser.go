package commands

import (
	"CampusPortal/internal/cli/bootstrap"
	"CampusPortal/internal/config"
	"CampusPortal/internal/service"
	"context"
	"fmt"
)

type createSuperuserCmd struct{}

func (createSuperuserCmd) Name() string { return "createsuperuser" }
func (createSuperuserCmd) Description() string {
	return "Создать администратора"
}
func (createSuperuserCmd) Usage() string {
	return "createsuperuser <email> <password> [username] [first_name] [last_name]"
}

func (createSuperuserCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 5 {
		return ErrUsage
	}
	extra := service.UserFields{}
	if len(args) > 2 {
		extra.Username = args[2]
	}
	if len(args) > 3 {
		extra.FirstName = args[3]
	}
	if len(args) > 4 {
		extra.LastName = args[4]
	}

	svc, done, err := bootstrap.OpenUserService(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	u, err := svc.CreateSuperuser(ctx, args[0], args[1], extra)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Superuser created: id=%d email=%s\n", u.ID, u.Email)
	return nil
}

func init() { RegisterCmd(createSuperuserCmd{}) }
