package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) seed(ctx context.Context) error {
	if err := cli.academicSvc.Seed(ctx); err != nil {
		return err
	}
	fmt.Println("academic data seeded")
	return nil
}
