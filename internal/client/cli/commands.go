package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/primesecret/authgate/internal/client/guard"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	name, err := GetSimpleText(a.reader, "Enter display name (optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	if err := a.session.Register(ctx, email, string(password), name); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// authorize runs the route guard before a protected command. It reports
// whether the command may proceed and explains the redirect otherwise.
func (a *App) authorize(ctx context.Context) bool {
	switch guard.Route(ctx, a.session) {
	case guard.Proceed:
		return true
	case guard.RedirectLanding:
		fmt.Fprintln(a.out, "Please log in first.")
	case guard.RedirectLandingReplace:
		fmt.Fprintln(a.out, "Session expired, please log in again.")
	}
	return false
}

func (a *App) Whoami(ctx context.Context) error {
	if !a.authorize(ctx) {
		return nil
	}

	fmt.Fprintf(a.out, "Logged in as %s (access token valid until %s)\n",
		a.session.Email(), a.session.AccessExpiresAt().Format("15:04:05"))
	return nil
}

// Audit sends an audit event through the guarded client, exercising bearer
// injection and the renew-and-retry path.
func (a *App) Audit(ctx context.Context) error {
	if !a.authorize(ctx) {
		return nil
	}

	action, err := GetSimpleText(a.reader, "Enter action to record", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	payload, err := json.Marshal(map[string]string{"action": action})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.ServerURL+"/api/audit/log", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.guarded.Do(req)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(a.out, "Server rejected the event (status %d)\n", resp.StatusCode)
		return nil
	}

	fmt.Fprintln(a.out, "Recorded.")
	return nil
}

// Refresh forces a renewal, mainly useful to watch rotation happen.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.Renew(ctx); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Token pair renewed.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
