package main

import (
	"errors"
	"flag"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	redisadapter "github.com/naidizakupku/portal/internal/adapters/redis"
	"github.com/naidizakupku/portal/internal/bootstrap"
	"github.com/naidizakupku/portal/internal/ports"
)

func parseDevice(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	device := fs.String("device", "", "Device id (value of the device cookie)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *device == "" && fs.NArg() > 0 {
		*device = fs.Arg(0)
	}
	id, err := uuid.Parse(strings.TrimSpace(*device))
	if err != nil {
		return "", errors.New("a valid -device id is required")
	}
	return id.String(), nil
}

func deviceChannel(cc *commandContext, args []string, name string) (*redisadapter.ClientChannel, func(), error) {
	device, err := parseDevice(name, args)
	if err != nil {
		return nil, nil, err
	}
	client, err := connectRedis(cc)
	if err != nil {
		return nil, nil, err
	}
	factory := redisadapter.NewClientChannelFactory(client, cc.Config.Redis.KeyPrefix, cc.Config.Auth.CredentialTTL)
	return factory.For(device), func() { bootstrap.CloseRedis(client, cc.Logger) }, nil
}

func runDeviceShow(cc *commandContext, args []string) error {
	ch, closeFn, err := deviceChannel(cc, args, "device-show")
	if err != nil {
		return err
	}
	defer closeFn()

	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	if err = writef(tw, "SLOT\tVALUE\n"); err != nil {
		return err
	}
	for _, slot := range ports.AllSlots {
		value, ok, getErr := ch.Get(cc.Ctx, slot)
		if getErr != nil {
			return getErr
		}
		shown := "-"
		if ok {
			shown = maskValue(slot, value)
		}
		if err = writef(tw, "%s\t%s\n", slot, shown); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runDeviceClear(cc *commandContext, args []string) error {
	ch, closeFn, err := deviceChannel(cc, args, "device-clear")
	if err != nil {
		return err
	}
	defer closeFn()

	var errs []error
	for _, slot := range ports.AllSlots {
		errs = append(errs, ch.Delete(cc.Ctx, slot))
	}
	if err = errors.Join(errs...); err != nil {
		return err
	}
	return writef(cc.Out, "cleared credentials of device %s\n", ch.Device())
}

// maskValue hides bearer material; the session snapshot is shown as is.
func maskValue(slot ports.Slot, value string) string {
	if slot == ports.SlotSession {
		return value
	}
	const keep = 4
	if len(value) <= keep*2 {
		return strings.Repeat("*", len(value))
	}
	return value[:keep] + "..." + value[len(value)-keep:]
}

func runPage(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("page", flag.ContinueOnError)
	origin := fs.String("origin", cc.Config.Backend.PublicOrigin, "Portal origin")
	path := fs.String("path", "/", "Page path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	base, err := url.Parse(strings.TrimRight(*origin, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return errors.New("-origin must be an absolute URL")
	}
	state, err := openStateFile(cc.StatePath, nil)
	if err != nil {
		return err
	}
	jar, err := newPortalJar(state, base)
	if err != nil {
		return err
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: cc.Config.Backend.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	target := base.ResolveReference(&url.URL{Path: "/" + strings.TrimLeft(*path, "/")})
	req, err := http.NewRequestWithContext(cc.Ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if loc := resp.Header.Get("Location"); loc != "" {
		return writef(cc.Out, "%s %d -> %s\n", target.Path, resp.StatusCode, loc)
	}
	return writef(cc.Out, "%s %d\n", target.Path, resp.StatusCode)
}
