package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/method"
	"github.com/slok/blendeval/internal/optimizer"
	"github.com/slok/blendeval/internal/optimizer/fake"
	"github.com/slok/blendeval/internal/optimizer/remote"
	"github.com/slok/blendeval/internal/printer"
	storageio "github.com/slok/blendeval/internal/storage/io"
	"github.com/slok/blendeval/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug         bool
	NoLog         bool
	NoColor       bool
	LoggerType    string
	DBPath        string
	OptimizerURL  string
	FakeOptimizer bool
	MethodsFile   string
	User          string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := filepath.Join(homedir.HomeDir(), ".blendeval", "blendeval.db")
	app.Flag("db-path", "Path to the SQLite database file.").Envar("BLENDEVAL_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("optimizer-url", "Base URL of the remote blend optimizer.").Envar("BLENDEVAL_OPTIMIZER_URL").Default("http://127.0.0.1:8000").StringVar(&c.OptimizerURL)
	app.Flag("fake-optimizer", "Use an in-process fake optimizer instead of the remote one.").BoolVar(&c.FakeOptimizer)
	app.Flag("methods-file", "YAML file with the optimizer method descriptors, the built-in methods are used when missing.").StringVar(&c.MethodsFile)
	app.Flag("user", "Acting user.").Envar("BLENDEVAL_USER").Default(defaultUser()).StringVar(&c.User)

	return c
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

func (c *RootCommand) newRepository(ctx context.Context) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.DBPath,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

func (c *RootCommand) newOptimizer() (optimizer.Client, error) {
	if c.FakeOptimizer {
		opt, err := fake.NewOptimizer(fake.OptimizerConfig{Logger: c.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create fake optimizer: %w", err)
		}
		return opt, nil
	}

	opt, err := remote.NewClient(remote.ClientConfig{
		BaseURL: c.OptimizerURL,
		Logger:  c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create optimizer client: %w", err)
	}
	return opt, nil
}

func (c *RootCommand) newMethods(ctx context.Context) (*method.Registry, error) {
	if c.MethodsFile == "" {
		return method.Default(), nil
	}

	fsys, name, err := fileFS(c.MethodsFile)
	if err != nil {
		return nil, err
	}
	methods, err := storageio.NewMethodsYAMLRepository(fsys).GetMethods(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("could not load methods: %w", err)
	}

	return method.NewRegistry(methods)
}

func (c *RootCommand) newPrinter(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(c.Stdout)
	}
	return printer.NewTablePrinter(c.Stdout)
}

// fileFS returns a filesystem rooted at the file directory and the file name on it.
func fileFS(path string) (fs.FS, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return os.DirFS(filepath.Dir(abs)), filepath.Base(abs), nil
}
