// Package main runs a program inside a text terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/p47t/vip8/internal/cli"
	"github.com/p47t/vip8/internal/config"
	"github.com/p47t/vip8/internal/options"
	"github.com/p47t/vip8/internal/session"
	"github.com/p47t/vip8/internal/term"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// terminal combines the keyboard and the renderer into a frontend.
type terminal struct {
	*term.Keyboard
	*term.Renderer
}

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(os.Args)
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	session.PrintBanner(logger, opts, "chip8-term", version, commit, date)

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	prof, err := session.StartProfile(opts.Profile)
	if err != nil {
		return err
	}
	defer prof.Stop()

	restore, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer func() {
		if err := restore(); err != nil {
			logger.Error("Restoring terminal failed", log.Err(err))
		}
	}()

	renderer := term.NewRenderer(opts.Foreground, opts.Background)
	frontend := terminal{
		Keyboard: term.NewKeyboard(os.Stdin, term.DefaultHold),
		Renderer: renderer,
	}

	sess, err := session.New(logger, opts, frontend)
	if err != nil {
		return err
	}
	defer sess.Close()

	renderer.Start()
	err = sess.Run(ctx)
	renderer.Stop()
	if err != nil && opts.Debug {
		sess.System().Print()
	}
	return err
}
