package main

import (
	"fmt"
	"strconv"

	"github.com/uiaee/portal/core/academic"
)

func (cli *commandLine) grade(args []string) error {
	fs := cli.flagSet("grade")
	level := fs.Int("level", 100, "The student's level (100..500).")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errHelp
	}

	for _, arg := range fs.Args() {
		score, err := strconv.Atoi(arg)
		if err != nil || score < 0 || score > 100 {
			return fmt.Errorf("score must be a number between 0 and 100 (got '%s')", arg)
		}
		fmt.Fprintf(cli.out, "%d\t%s\t%.2f\n", score, academic.LetterGrade(score), academic.GradePoints(score, *level))
	}
	return nil
}

func (cli *commandLine) level(args []string) error {
	fs := cli.flagSet("level")
	matric := fs.String("matric", "", "The student's matric number.")
	session := fs.String("session", academic.DefaultSessionName, "The academic session, e.g. 2024/2025.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *matric == "" {
		fs.Usage()
		return errHelp
	}
	fmt.Fprintln(cli.out, academic.LevelForSession(*matric, *session))
	return nil
}
