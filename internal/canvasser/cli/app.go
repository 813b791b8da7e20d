// Package cli is the interactive terminal client for the canvasser API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fieldstack/canvasser/internal/canvasser/shell"
	"github.com/fieldstack/canvasser/pkg/salesdk"
)

// App wires the shell state machine to terminal I/O.
type App struct {
	Shell *shell.Shell

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(sh *shell.Shell, in io.Reader, out io.Writer) *App {
	return &App{
		Shell:  sh,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run starts the read-eval-print loop. It exits on EOF or when the user
// types "exit" or "quit". Command handlers print their own errors so one
// bad input never kills the loop.
func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(a.reader)

	for {
		fmt.Fprintf(a.out, "canvasser [%s]> ", a.Shell.State())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			a.printHelp()

		case "register":
			a.report(a.Register(ctx))

		case "login":
			a.report(a.Login(ctx))

		case "checkin":
			a.report(a.CheckIn(ctx))

		case "checkout":
			a.report(a.CheckOut())

		case "sale":
			a.report(a.RecordSale(ctx))

		case "l", "list":
			a.report(a.List(ctx))

		case "status":
			a.Status()

		case "logout":
			a.Shell.Logout()
			fmt.Fprintln(a.out, "Logged out.")

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) printHelp() {
	switch a.Shell.State() {
	case shell.LoggedOut:
		fmt.Fprintln(a.out, "Available commands: register, login, status, exit")
	case shell.Authenticated:
		fmt.Fprintln(a.out, "Available commands: checkin, (l)ist, status, logout, exit")
	case shell.CheckedIn:
		fmt.Fprintln(a.out, "Available commands: sale, (l)ist, checkout, status, logout, exit")
	}
}

func (a *App) report(err error) {
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
}

// Register prompts for account details and creates the account. The user
// still needs to log in afterwards.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	phone, err := GetSimpleText(a.reader, "Phone", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	err = a.Shell.Register(ctx, salesdk.RegisterRequest{
		Email:    email,
		Password: string(password),
		Name:     name,
		Phone:    phone,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registered. You can now log in.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.Shell.Login(ctx, email, string(password)); err != nil {
		return err
	}

	if user, ok := a.Shell.User(); ok {
		fmt.Fprintf(a.out, "Welcome, %s.\n", user.Name)
	}
	return nil
}

// CheckIn prompts for the current position and starts the working day.
func (a *App) CheckIn(ctx context.Context) error {
	lat, err := GetCoordinate(a.reader, "Latitude", a.out)
	if err != nil {
		return err
	}
	lon, err := GetCoordinate(a.reader, "Longitude", a.out)
	if err != nil {
		return err
	}

	a.Shell.SetLocation(salesdk.Location{Latitude: lat, Longitude: lon})
	if err := a.Shell.CheckIn(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Checked in. Good luck out there.")
	return nil
}

// CheckOut ends the day locally.
func (a *App) CheckOut() error {
	if err := a.Shell.CheckOut(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Checked out.")
	return nil
}

// RecordSale prompts for customer details and submits the sale.
func (a *App) RecordSale(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Customer name", a.out)
	if err != nil {
		return err
	}
	phone, err := GetSimpleText(a.reader, "Customer phone", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Customer email", a.out)
	if err != nil {
		return err
	}
	model, err := GetSimpleText(a.reader, "Device model", a.out)
	if err != nil {
		return err
	}

	sale, err := a.Shell.RecordSale(ctx, salesdk.SaleInput{
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: email,
		DeviceModel:   model,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Sale recorded at %s.\n", sale.CreatedAt.Local().Format("15:04"))
	return nil
}

// List refreshes and prints today's sales.
func (a *App) List(ctx context.Context) error {
	if err := a.Shell.RefreshToday(ctx); err != nil {
		return err
	}

	sales := a.Shell.Sales()
	if len(sales) == 0 {
		fmt.Fprintln(a.out, "No sales recorded today.")
		return nil
	}

	fmt.Fprintf(a.out, "Today's sales (%d):\n", len(sales))
	for _, s := range sales {
		fmt.Fprintf(a.out, "  %s  %-20s  %s\n",
			s.CreatedAt.Local().Format("15:04"),
			s.CustomerName,
			s.DeviceModel,
		)
	}
	return nil
}

// Status prints the current session state.
func (a *App) Status() {
	if user, ok := a.Shell.User(); ok {
		fmt.Fprintf(a.out, "%s (%s), %s\n", user.Name, user.Email, a.Shell.State())
		return
	}
	fmt.Fprintln(a.out, a.Shell.State())
}
