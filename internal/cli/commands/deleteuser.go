package commands

import (
	"CampusPortal/internal/cli/bootstrap"
	"CampusPortal/internal/config"
	"context"
	"fmt"
	"strconv"
)

type deleteUserCmd struct{}

func (deleteUserCmd) Name() string { return "deleteuser" }
func (deleteUserCmd) Description() string {
	return "Удалить пользователя вместе с его работами"
}
func (deleteUserCmd) Usage() string { return "deleteuser <id>" }

func (deleteUserCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return ErrUsage
	}

	svc, done, err := bootstrap.OpenUserService(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	deleted, err := svc.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(Out, "User %d not found\n", id)
		return nil
	}
	fmt.Fprintf(Out, "User %d deleted\n", id)
	return nil
}

func init() { RegisterCmd(deleteUserCmd{}) }
