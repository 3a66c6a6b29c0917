package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/bioguard/internal/client/client"
	"github.com/dmitrijs2005/bioguard/internal/client/config"
	"github.com/dmitrijs2005/bioguard/internal/client/models"
)

// API is the part of client.Client the commands use.
type API interface {
	Login(ctx context.Context, email string, password []byte) error
	Logout() error
	Ping(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	ListUsers(ctx context.Context, search, role string) ([]models.User, error)
	CreateUser(ctx context.Context, email string, password []byte, name, role string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListPeople(ctx context.Context, search, listType string) ([]models.Person, error)
	CreatePerson(ctx context.Context, name, listType string, photo []byte) (string, error)
	DeletePerson(ctx context.Context, id string) error
	PersonPhoto(ctx context.Context, id string) ([]byte, error)
	Recognize(ctx context.Context, photo []byte) (*models.Recognition, error)
	ListLogs(ctx context.Context, personID string, limit int) ([]models.AccessLog, error)
}

// file access seams
var (
	readFile  = os.ReadFile
	writeFile = os.WriteFile
)

type App struct {
	config *config.Config
	api    API
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	sessions := client.NewFileSessionStore(c.TokenDir)
	api := client.New(c.ServerURL, c.RequestTimeout, sessions)
	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// Run executes args as a single command, or starts the interactive prompt
// when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		runREPL(ctx, a.exec, a.reader, a.out)
		return nil
	}
	return a.exec(ctx, args)
}
