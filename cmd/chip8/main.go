// Package main runs a program in an OpenGL window.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/p47t/vip8/internal/cli"
	"github.com/p47t/vip8/internal/config"
	"github.com/p47t/vip8/internal/options"
	"github.com/p47t/vip8/internal/session"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
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
	session.PrintBanner(logger, opts, "chip8", version, commit, date)

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

	var emu Emulator
	if err := emu.Initialize(opts.Display); err != nil {
		glfw.Terminate()
		return err
	}
	defer emu.Terminate()

	sess, err := session.New(logger, opts, &emu)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Run(ctx); err != nil {
		if opts.Debug {
			sess.System().Print()
		}
		return err
	}
	return nil
}
