package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/naidizakupku/portal/config"
	"github.com/naidizakupku/portal/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx       context.Context
	Logger    *slog.Logger
	Config    config.AppConfig
	Out       io.Writer
	StatePath string
}

func main() {
	logger := bootstrap.InitLogger(os.Stderr, false)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	statePath, err := defaultStatePath()
	if err != nil {
		logger.ErrorContext(context.Background(), "resolve state path", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:       ctx,
		Logger:    logger,
		Config:    cfg,
		Out:       os.Stdout,
		StatePath: statePath,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()
	if runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login-code": {
			name:        "login-code",
			description: "Log in with a code issued by the Telegram bot",
			run:         runLoginCode,
		},
		"login-telegram": {
			name:        "login-telegram",
			description: "Log in with raw Mini App init data",
			run:         runLoginTelegram,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the stored session, recovering it from the backend when needed",
			run:         runWhoami,
		},
		"verify-token": {
			name:        "verify-token",
			description: "Verify the stored bearer token with the backend",
			run:         runVerifyToken,
		},
		"logout": {
			name:        "logout",
			description: "End the current session and clear stored credentials",
			run:         runLogout,
		},
		"logout-all": {
			name:        "logout-all",
			description: "End every session of the current user",
			run:         runLogoutAll,
		},
		"news": {
			name:        "news",
			description: "Fetch top news through the degrading proxy",
			run:         runNews,
		},
		"stats": {
			name:        "stats",
			description: "Fetch project statistics through the degrading proxy",
			run:         runStats,
		},
		"cache-clear": {
			name:        "cache-clear",
			description: "Drop cached proxy payloads from Redis",
			run:         runCacheClear,
		},
		"device-show": {
			name:        "device-show",
			description: "Inspect the server-side credentials of a device",
			run:         runDeviceShow,
		},
		"device-clear": {
			name:        "device-clear",
			description: "Remove the server-side credentials of a device",
			run:         runDeviceClear,
		},
		"page": {
			name:        "page",
			description: "Request a portal page with the stored cookies and report the edge decision",
			run:         runPage,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: portal-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
