package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/naidizakupku/portal/internal/adapters/backend"
	"github.com/naidizakupku/portal/internal/adapters/telegram"
	domainauth "github.com/naidizakupku/portal/internal/domain/auth"
	"github.com/naidizakupku/portal/internal/service"
)

// engineFor builds a session engine whose client channel is the state file
// and whose edge channel is the cookie section replayed by the page command.
func engineFor(cc *commandContext, launch domainauth.Launch) (*service.SessionEngine, error) {
	state, err := openStateFile(cc.StatePath, nil)
	if err != nil {
		return nil, err
	}
	creds := service.NewCredentialStore(service.CredentialStoreOptions{
		Client: fileChannel{state: state},
		Edge:   fileChannel{state: state, edge: true},
		TTL:    cc.Config.Auth.CredentialTTL,
	})
	return service.NewSessionEngine(service.SessionEngineOptions{
		Gateway:     newBackendClient(cc),
		Credentials: creds,
		Extractor:   telegram.NewExtractor(),
		Launch:      launch,
		Logger:      cc.Logger,
	}), nil
}

func newBackendClient(cc *commandContext) *backend.Client {
	fetcher := backend.NewFetcher(backend.FetcherOptions{
		Timeout:   cc.Config.Backend.Timeout,
		UserAgent: cc.Config.Backend.UserAgent,
		Logger:    cc.Logger,
	})
	return backend.NewClient(backend.NewResolver(cc.Config.Backend), fetcher)
}

func runLoginCode(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("login-code", flag.ContinueOnError)
	raw := fs.String("code", "", "Login code issued by the bot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *raw == "" && fs.NArg() > 0 {
		*raw = fs.Arg(0)
	}
	code, err := domainauth.ParseBotCode(*raw)
	if err != nil {
		return err
	}
	engine, err := engineFor(cc, domainauth.Launch{})
	if err != nil {
		return err
	}
	return report(cc.Out, engine, engine.LoginWithCode(cc.Ctx, code))
}

func runLoginTelegram(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("login-telegram", flag.ContinueOnError)
	initData := fs.String("init-data", os.Getenv("TELEGRAM_INIT_DATA"), "Raw Mini App init data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	launch := domainauth.NewLaunch(*initData)
	if !launch.Present {
		return errors.New("init data is required (-init-data or TELEGRAM_INIT_DATA)")
	}
	engine, err := engineFor(cc, launch)
	if err != nil {
		return err
	}
	return report(cc.Out, engine, engine.LoginTelegram(cc.Ctx))
}

func runWhoami(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	offline := fs.Bool("offline", false, "Only read the stored session snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	engine, err := engineFor(cc, domainauth.Launch{})
	if err != nil {
		return err
	}
	res := engine.Resume(cc.Ctx)
	if !res.OK && !*offline {
		res = engine.Recover(cc.Ctx)
	}
	return report(cc.Out, engine, res)
}

func runVerifyToken(cc *commandContext, _ []string) error {
	engine, err := engineFor(cc, domainauth.Launch{})
	if err != nil {
		return err
	}
	return report(cc.Out, engine, engine.VerifyToken(cc.Ctx))
}

func runLogout(cc *commandContext, _ []string) error {
	engine, err := engineFor(cc, domainauth.Launch{})
	if err != nil {
		return err
	}
	return report(cc.Out, engine, engine.Logout(cc.Ctx))
}

func runLogoutAll(cc *commandContext, _ []string) error {
	engine, err := engineFor(cc, domainauth.Launch{})
	if err != nil {
		return err
	}
	return report(cc.Out, engine, engine.LogoutAll(cc.Ctx))
}

// report prints the snapshot and turns a failed result into an error.
func report(w io.Writer, engine *service.SessionEngine, res service.AuthResult) error {
	out := struct {
		OK       bool                `json:"ok"`
		Reason   service.Reason      `json:"reason,omitempty"`
		Message  string              `json:"message,omitempty"`
		Snapshot domainauth.Snapshot `json:"snapshot"`
	}{res.OK, res.Reason, res.Message, engine.Snapshot()}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if res.OK {
		return nil
	}
	msg := strings.TrimSpace(res.Message)
	if msg == "" {
		return fmt.Errorf("auth failed: %s", res.Reason)
	}
	return fmt.Errorf("auth failed: %s: %s", res.Reason, msg)
}
