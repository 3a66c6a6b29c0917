package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/bioguard/internal/common"
)

var errUsage = errors.New("usage")

func usageErr(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

// exec runs one command given as whitespace-split words.
func (a *App) exec(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		a.help()
		return nil
	case "login":
		return a.login(ctx, rest)
	case "logout":
		if err := a.api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "me":
		return a.me(ctx)
	case "users":
		return a.users(ctx, rest)
	case "people":
		return a.people(ctx, rest)
	case "recognize":
		return a.recognize(ctx, rest)
	case "logs":
		return a.logs(ctx, rest)
	case "ping":
		if err := a.api.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Server is up")
		return nil
	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, `Commands:
  login [email]                      authenticate
  logout                             forget the saved session
  me                                 show your profile
  users list [search]                list users (admin)
  users add <email> <name> [role]    create a user (admin)
  users delete <id>                  delete a user (admin)
  people list [search]               list registered people
  people add <name> <list> <photo>   register a person (list: whitelist|blacklist)
  people delete <id>                 delete a person
  people photo <id> <out-file>       download a person's photo
  recognize <photo>                  match a capture and log the decision
  logs [personId] [limit]            list access logs (admin)
  ping                               check the server
  exit                               leave the prompt`)
}

func (a *App) login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = GetSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login unsuccessful: %w", err)
	}
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	printUsers(a.out, u)
	return nil
}

func (a *App) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErr("users list|add|delete")
	}

	switch args[0] {
	case "list":
		var search string
		if len(args) > 1 {
			search = args[1]
		}
		users, err := a.api.ListUsers(ctx, search, "")
		if err != nil {
			return err
		}
		printUsers(a.out, ptrs(users)...)
		return nil

	case "add":
		if len(args) < 3 {
			return usageErr("users add <email> <name> [role]")
		}
		role := common.RoleUser
		if len(args) > 3 {
			role = args[3]
		}

		password, err := GetPassword(a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)

		u, err := a.api.CreateUser(ctx, args[1], password, args[2], role)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created user %s (%s)\n", u.ID, u.Role)
		return nil

	case "delete":
		if len(args) < 2 {
			return usageErr("users delete <id>")
		}
		if err := a.api.DeleteUser(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Deleted")
		return nil
	}

	return usageErr("users list|add|delete")
}

func (a *App) people(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErr("people list|add|delete|photo")
	}

	switch args[0] {
	case "list":
		var search string
		if len(args) > 1 {
			search = args[1]
		}
		people, err := a.api.ListPeople(ctx, search, "")
		if err != nil {
			return err
		}
		printPeople(a.out, people)
		return nil

	case "add":
		if len(args) < 4 {
			return usageErr("people add <name> <whitelist|blacklist> <photo>")
		}
		photo, err := readFile(args[3])
		if err != nil {
			return err
		}
		id, err := a.api.CreatePerson(ctx, args[1], args[2], photo)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Registered %s\n", id)
		return nil

	case "delete":
		if len(args) < 2 {
			return usageErr("people delete <id>")
		}
		if err := a.api.DeletePerson(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Deleted")
		return nil

	case "photo":
		if len(args) < 3 {
			return usageErr("people photo <id> <out-file>")
		}
		data, err := a.api.PersonPhoto(ctx, args[1])
		if err != nil {
			return err
		}
		if err := writeFile(args[2], data, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), args[2])
		return nil
	}

	return usageErr("people list|add|delete|photo")
}

func (a *App) recognize(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageErr("recognize <photo>")
	}
	photo, err := readFile(args[0])
	if err != nil {
		return err
	}

	r, err := a.api.Recognize(ctx, photo)
	if err != nil {
		return err
	}
	if !r.Matched || r.Person == nil {
		fmt.Fprintln(a.out, "No match")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s): %s [log %s]\n", r.Person.Name, r.Person.ListType, r.Action, r.LogID)
	return nil
}

func (a *App) logs(ctx context.Context, args []string) error {
	var (
		personID string
		limit    int
	)
	if len(args) > 0 {
		personID = args[0]
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return usageErr("logs [personId] [limit]")
		}
		limit = n
	}

	logs, err := a.api.ListLogs(ctx, personID, limit)
	if err != nil {
		return err
	}
	printLogs(a.out, logs)
	return nil
}
